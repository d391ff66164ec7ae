// Package pg provides the PostgreSQL bootstrap layer: pgx/v5 connection
// pooling with startup retry, goose schema migrations, health checks and
// error classification helpers.
//
// The package keeps a small API surface so the persistence details stay in
// one place:
//
//   - Config — declarative settings populated from environment variables.
//   - Connect — opens a *pgxpool.Pool, retrying with a growing backoff.
//   - Migrate — applies goose migrations before the service starts serving.
//   - Healthcheck — readiness probe closure for the HTTP server.
//
// Helpers such as IsDuplicateKeyError or IsNotFoundError unwrap pgx errors so
// business logic can classify failures without importing pgconn directly.
package pg
