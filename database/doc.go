// Package database manages Bun connections for mysql, postgres and sqlite,
// versioned schema migrations, foreign key constraints, SQL seed files,
// health checks and driver error classification.
package database
