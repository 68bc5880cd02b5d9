// Package repository provides a generic repository abstraction built on Bun
// for CRUD operations, ordered listings, relations, and transactions.
package repository
