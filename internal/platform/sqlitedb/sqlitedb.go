package sqlitedb

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const databaseFile = "todoapp.db"

// Open ensures dataDir exists and opens the SQLite database inside it.
// The database file itself is created by the driver on first write.
func Open(dataDir string) (*sqlx.DB, error) {
	if dataDir == "" {
		dataDir = "app_data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory %q: %w", dataDir, err)
	}

	dsn := "file:" + filepath.Join(dataDir, databaseFile) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite serializes writers; a single connection avoids SQLITE_BUSY
	// churn under concurrent request handlers.
	db.SetMaxOpenConns(1)
	return db, nil
}
