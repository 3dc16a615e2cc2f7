// Package store provides SQLite-backed durable storage for the translation
// log. The web server appends one record per handled translation request,
// successes and failures alike; the CLI history command reads them back.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//
// SQLite allows a single writer, so the connection pool is capped at one
// connection. Writes are idempotent on the record ID.
package store
