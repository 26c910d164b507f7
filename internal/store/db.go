package store

import (
	"github.com/jmoiron/sqlx"
)

// DBTX is an interface that abstracts the database access layer.
// It is implemented by both *sqlx.DB and *sqlx.Tx, allowing stores
// to work with either a database connection or a transaction.
type DBTX interface {
	sqlx.ExtContext
	sqlx.PreparerContext
}
