// Package storage keeps the history of validation sessions in SQLite.
package storage
