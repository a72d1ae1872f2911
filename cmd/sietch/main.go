// Package main provides a CLI for operating a sietch deployment.
//
// The CLI supports:
//   - bootstrap: Create the store, install the model, seed the root admin
//   - check: Evaluate a permission check against the database
//   - grant/revoke: Write relationship tuples
//   - validate: Check a model file without touching the database
//   - status: Show bootstrap state of the database
//
// This tool is typically run during deployment (bootstrap) and for
// operational debugging (check, status). Application code should use the
// library directly instead of shelling out.
//
// Usage:
//
//	sietch [flags] <command>
//
// Commands that touch the database (bootstrap, check, grant, revoke,
// status) need database.url in sietch.yaml, SIETCH_DATABASE_URL, or --db.
// validate works offline.
package main

func main() {
	Execute()
}
