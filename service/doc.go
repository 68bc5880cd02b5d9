// Package service holds the generic CRUD service and the bakery and baked
// good services the HTTP handlers call.
package service
