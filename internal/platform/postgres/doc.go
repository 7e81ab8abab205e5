// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package.
// It handles the details of query execution, mapping between domain entities
// and database records, translation of PostgreSQL errors into store errors,
// and the embedded goose migrations that create the schema.
//
// Every store accepts a store.DBTX, so the same implementation runs against
// the connection pool or inside a transaction obtained through WithTx.
package postgres
