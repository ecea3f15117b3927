package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys and WAL mode
	if _, err := db.Exec(`
        PRAGMA foreign_keys = ON;
        PRAGMA journal_mode = WAL;
    `); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set PRAGMA: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

func (db *SQLiteDB) WithTx(fn func(Transaction) error) error {
	tx, err := db.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	defer tx.Rollback()

	if err := fn(&SQLiteTx{tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}

	return nil
}

func (db *SQLiteDB) GetDocument(path string) (*DocumentRecord, error) {
	var record DocumentRecord
	err := db.db.QueryRow(
		"SELECT path, last_modified FROM documents WHERE path = ?",
		path,
	).Scan(&record.Path, &record.LastModified)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	return &record, nil
}

func (db *SQLiteDB) GetAllDocuments() ([]DocumentRecord, error) {
	rows, err := db.db.Query("SELECT path, last_modified FROM documents WHERE scanned = 1")
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var records []DocumentRecord
	for rows.Next() {
		var record DocumentRecord
		if err := rows.Scan(&record.Path, &record.LastModified); err != nil {
			return nil, fmt.Errorf("failed to scan document record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document records: %w", err)
	}

	return records, nil
}

func (db *SQLiteDB) DeleteDocument(path string) error {
	result, err := db.db.Exec("DELETE FROM documents WHERE path = ?", path)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (db *SQLiteDB) GetTagLinks(sourcePath string) ([]TagLink, error) {
	rows, err := db.db.Query(`
        SELECT source_path, target_path
        FROM tag_links
        WHERE source_path = ?
    `, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to query tag links: %w", err)
	}
	defer rows.Close()

	return scanTagLinks(rows)
}

func (db *SQLiteDB) GetBacklinks(targetPath string) ([]TagLink, error) {
	rows, err := db.db.Query(`
        SELECT source_path, target_path
        FROM tag_links
        WHERE target_path = ?
    `, targetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to query backlinks: %w", err)
	}
	defer rows.Close()

	return scanTagLinks(rows)
}

func (db *SQLiteDB) DeleteTagLinks(sourcePath string) error {
	_, err := db.db.Exec("DELETE FROM tag_links WHERE source_path = ?", sourcePath)
	if err != nil {
		return fmt.Errorf("failed to delete tag links: %w", err)
	}
	return nil
}

func (db *SQLiteDB) Clear() error {
	_, err := db.db.Exec(`
        DELETE FROM tag_links;
        DELETE FROM documents;
    `)
	if err != nil {
		return fmt.Errorf("failed to clear database: %w", err)
	}
	return nil
}

func (db *SQLiteDB) Close() error {
	return db.db.Close()
}

func scanTagLinks(rows *sql.Rows) ([]TagLink, error) {
	var records []TagLink
	for rows.Next() {
		var record TagLink
		if err := rows.Scan(&record.SourcePath, &record.TargetPath); err != nil {
			return nil, fmt.Errorf("failed to scan tag link: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag links: %w", err)
	}

	return records, nil
}
