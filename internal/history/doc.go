// Package history persists disc classification outcomes in SQLite.
//
// The watch daemon records one entry per classification (startup probe or
// medium-change event) and `totem-disc history` lists them. The store uses a
// single schema version; a mismatch asks the user to clear the database.
package history
