package database

import (
	"database/sql"
	"fmt"
)

type SQLiteTx struct {
	tx *sql.Tx
}

func (tx *SQLiteTx) UpsertDocument(doc *DocumentRecord) error {
	_, err := tx.tx.Exec(`
        INSERT INTO documents (path, last_modified, scanned)
        VALUES (?, ?, 1)
        ON CONFLICT(path) DO UPDATE SET
            last_modified = excluded.last_modified,
            scanned = 1
    `, doc.Path, doc.LastModified)

	if err != nil {
		return fmt.Errorf("failed to upsert document in transaction: %w", err)
	}

	return nil
}

func (tx *SQLiteTx) UpsertTagLinks(sourcePath string, targetPaths []string) error {
	// Replace the source's links wholesale.
	_, err := tx.tx.Exec("DELETE FROM tag_links WHERE source_path = ?", sourcePath)
	if err != nil {
		return fmt.Errorf("failed to delete existing tag links: %w", err)
	}

	if len(targetPaths) == 0 {
		return nil
	}

	// The source row must exist for the foreign key; targets are plain
	// paths and may point outside the scanned set.
	_, err = tx.tx.Exec(`
        INSERT INTO documents (path, last_modified, scanned)
        VALUES (?, 0, 0)
        ON CONFLICT(path) DO NOTHING
    `, sourcePath)
	if err != nil {
		return fmt.Errorf("failed to ensure source document exists: %w", err)
	}

	stmt, err := tx.tx.Prepare(
		"INSERT OR IGNORE INTO tag_links (source_path, target_path) VALUES (?, ?)",
	)
	if err != nil {
		return fmt.Errorf("failed to prepare tag link insert statement: %w", err)
	}
	defer stmt.Close()

	for _, targetPath := range targetPaths {
		if _, err := stmt.Exec(sourcePath, targetPath); err != nil {
			return fmt.Errorf("failed to insert tag link: %w", err)
		}
	}

	return nil
}
