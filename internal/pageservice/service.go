// Package pageservice exposes the page catalog to the preview API.
package pageservice

import (
	"context"

	"github.com/starford/quire/internal/index"
	"github.com/starford/quire/internal/models"
)

// PageDetail is the full representation of a catalogued page.
type PageDetail struct {
	Path        string      `json:"path"`
	Href        string      `json:"href"`
	Kind        string      `json:"kind"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Tags        []string    `json:"tags"`
	Date        models.Date `json:"date"`
	Checksum    string      `json:"checksum,omitempty"`
	Body        string      `json:"body,omitempty"`
}

// PageListItem is a lightweight item in a list response.
type PageListItem struct {
	Path          string   `json:"path"`
	Href          string   `json:"href"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Tags          []string `json:"tags"`
	Date          string   `json:"date"`
	FormattedDate string   `json:"formatted_date"`
}

// SearchResult is a single search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Href    string `json:"href"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Service answers catalog queries.
type Service struct {
	db index.Catalog
}

// NewService creates a new page service.
func NewService(db index.Catalog) *Service {
	return &Service{db: db}
}

// GetPage returns one page by source path. Unknown paths yield an error
// wrapping apperr.ErrNotFound.
func (s *Service) GetPage(_ context.Context, path string) (*PageDetail, error) {
	r, err := s.db.GetPage(path)
	if err != nil {
		return nil, err
	}
	return &PageDetail{
		Path:        r.Path,
		Href:        r.Href,
		Kind:        r.Kind.String(),
		Title:       r.Title,
		Description: r.Description,
		Tags:        nonNilSlice(r.Tags),
		Date:        r.Date,
		Checksum:    r.Checksum,
		Body:        r.Body,
	}, nil
}

// ListPages returns visible pages in index order with an optional tag
// filter.
func (s *Service) ListPages(_ context.Context, limit, offset int, tag string) ([]PageListItem, int, error) {
	rows, total, err := s.db.ListPages(limit, offset, tag)
	if err != nil {
		return nil, 0, err
	}
	items := make([]PageListItem, len(rows))
	for i, r := range rows {
		items[i] = PageListItem{
			Path:          r.Path,
			Href:          r.Href,
			Title:         r.Title,
			Description:   r.Description,
			Tags:          nonNilSlice(r.Tags),
			Date:          r.Date.String(),
			FormattedDate: r.Date.Format(models.DateLayout),
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the catalog.
func (s *Service) Search(_ context.Context, query string, limit int) ([]SearchResult, error) {
	hits, err := s.db.Search(query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]SearchResult, len(hits))
	for i, h := range hits {
		out[i] = SearchResult(h)
	}
	return out, nil
}

// Ready reports whether the catalog can serve queries.
func (s *Service) Ready(_ context.Context) error {
	return s.db.Ping()
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
