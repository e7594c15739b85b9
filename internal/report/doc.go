// Package report renders session reports: the plain line surface, a detail
// table, session history and JSON/CSV export.
package report
