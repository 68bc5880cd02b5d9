// Command bakery runs the bakery HTTP API and its database maintenance
// tasks.
//
//	bakery serve   [--config configs/config.yaml]
//	bakery migrate [--config configs/config.yaml]
//	bakery seed    [--config configs/config.yaml]
package main
