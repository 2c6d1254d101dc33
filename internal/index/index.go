package index

// Catalog defines the page catalog operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type Catalog interface {
	Replace(rows []PageRow) error
	GetPage(path string) (*PageRow, error)
	ListPages(limit, offset int, tag string) ([]PageRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Ping() error
	Close() error
}

// Verify *DB satisfies Catalog at compile time.
var _ Catalog = (*DB)(nil)
