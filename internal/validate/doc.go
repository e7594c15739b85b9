// Package validate runs a validation session: one trusted reference snapshot
// against a sequence of candidate scenarios.
//
// A Session moves INIT -> RUNNING -> REPORTED and never retries a scenario.
// Each scenario acquires a candidate, aligns it to the reference when its
// producer reorders particles, and compares position RMSE against a threshold
// chosen by regime: exact methods against near machine precision, approximate
// methods against a loose bound. An acquisition or read failure records an
// ERROR row and the session carries on. The aggregate is the AND of all rows.
package validate
