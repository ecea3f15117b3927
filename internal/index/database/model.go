package database

import "errors"

var (
	ErrNotFound            = errors.New("record not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrInvalidTransaction  = errors.New("invalid transaction")
)

// DocumentRecord is one scanned document in the workspace index.
type DocumentRecord struct {
	Path         string
	LastModified int64
}

// TagLink records that a document contains a tag marker resolving to a
// target path.
type TagLink struct {
	SourcePath string
	TargetPath string
}

// Transaction is the write surface available inside WithTx.
type Transaction interface {
	UpsertDocument(doc *DocumentRecord) error
	UpsertTagLinks(sourcePath string, targetPaths []string) error
}

// Database is the workspace tag index storage.
type Database interface {
	WithTx(fn func(Transaction) error) error

	GetDocument(path string) (*DocumentRecord, error)
	GetAllDocuments() ([]DocumentRecord, error)
	DeleteDocument(path string) error

	GetTagLinks(sourcePath string) ([]TagLink, error)
	GetBacklinks(targetPath string) ([]TagLink, error)
	DeleteTagLinks(sourcePath string) error

	Clear() error
	Close() error
}
