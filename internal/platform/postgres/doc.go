// Package postgres provides PostgreSQL implementations of the store
// interfaces, built on sqlx for scanning and squirrel for dynamic queries.
// The schema lives in embedded goose migrations applied by Migrate.
package postgres
