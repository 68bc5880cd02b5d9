// Package api serves the bakery HTTP routes with gin: bakeries and their
// baked goods as JSON, plus health and Prometheus metrics endpoints.
package api
