// Package database opens the SQLite file behind the game journal and keeps
// its schema current.
//
// Open configures the connection for a single writer (WAL mode and a busy
// timeout are optional). Migrate applies *.up.sql files from any fs.FS,
// normally the embedded migrations package:
//
//	db, err := database.Open(database.Config{Path: "./data/journal.db", WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql; any other
// file is ignored. Migrations only move forward. Each one runs in its own
// transaction and is recorded in schema_migrations.
package database
