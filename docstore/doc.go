// Package docstore provides DocumentStore implementations for the fiado ledger.
//
// Dir keeps documents as human readable JSON files in a folder, friendly to
// version control. SQL keeps them in a single table of a SQLite or PostgreSQL
// database. Redis keeps them in a Redis server. All of them check document
// versions atomically.
package docstore
