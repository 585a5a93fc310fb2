// Package hbnb is the Composition Root for the hbnb record console.
//
// It connects the record domain (pkg/core) with the file storage adapter
// (pkg/adapters/fs) and the command console (pkg/console).
//
// hbnb keeps typed records (User, Place, City, ...) in memory, keyed by
// "<Kind>.<id>", and writes the whole set to a single JSON, YAML or TOML
// file after every mutation.
//
// Features:
//
//   - **Two grammars**: `show User 1234` and `User.show("1234")` reach the same operation.
//   - **Typed values**: strings, integers, floats and lists, coerced to the kind's defaults on update.
//   - **Atomic saves**: the store file is replaced through a temp file and a rename.
//   - **Rollback**: a failed save restores the registry to its state before the command.
//   - **External edits**: an optional watcher reloads the store when another process rewrites it.
//
// Usage:
//
//	c, err := hbnb.New("file.json",
//		hbnb.WithIDFormat("nanoid"),
//		hbnb.WithLogger(logger),
//	)
//
//	// Run commands non-interactively
//	c.Exec(ctx, os.Stdout, `create User first_name="Betty"`, "count User")
package hbnb
