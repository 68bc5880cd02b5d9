// Package model holds the Bun models for bakeries and their baked goods and
// registers them for migration.
package model
