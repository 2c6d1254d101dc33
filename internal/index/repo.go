package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/models"
)

// PageRow represents a row in the pages table.
type PageRow struct {
	Path        string
	Href        string
	Kind        models.NodeKind
	Title       string
	Description string
	Tags        []string
	Date        models.Date
	Hidden      bool
	Checksum    string
	// Body is the document source without frontmatter. Only GetPage fills it.
	Body string
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Href    string
	Title   string
	Snippet string
}

// Replace swaps the whole catalog for rows within one transaction.
func (db *DB) Replace(rows []PageRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM pages`); err != nil {
		return fmt.Errorf("index: clear pages: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM page_tags`); err != nil {
		return fmt.Errorf("index: clear tags: %w", err)
	}
	if err := ftsReset(tx); err != nil {
		return err
	}

	page, err := tx.Prepare(`
		INSERT INTO pages (path, href, kind, title, description, tags, date, hidden, checksum, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("index: prepare page insert: %w", err)
	}
	defer page.Close()
	tag, err := tx.Prepare(`INSERT OR IGNORE INTO page_tags (path, tag) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare tag insert: %w", err)
	}
	defer tag.Close()

	for _, r := range rows {
		tags := r.Tags
		if tags == nil {
			tags = []string{}
		}
		tagsJSON, _ := json.Marshal(tags)
		if _, err := page.Exec(r.Path, r.Href, r.Kind.String(), r.Title, r.Description,
			string(tagsJSON), dateColumn(r.Date), r.Hidden, r.Checksum, r.Body); err != nil {
			return fmt.Errorf("index: insert page %s: %w", r.Path, err)
		}
		for _, t := range r.Tags {
			if _, err := tag.Exec(r.Path, t); err != nil {
				return fmt.Errorf("index: insert tag: %w", err)
			}
		}
		if r.Hidden {
			continue
		}
		if err := ftsInsert(tx, r); err != nil {
			return err
		}
	}

	return tx.Commit()
}

const pageColumns = `path, href, kind, title, description, tags, date, hidden, checksum`

// GetPage returns one page (file or directory) by source path.
func (db *DB) GetPage(path string) (*PageRow, error) {
	row := db.conn.QueryRow(`SELECT `+pageColumns+`, body FROM pages WHERE path = ?`, path)
	var body string
	r, err := scanPage(row, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: page %s: %w", path, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get page: %w", err)
	}
	r.Body = body
	return r, nil
}

// ListPages returns visible documents in index order (date descending, then
// path) and the total number of matches. An empty tag matches every page.
func (db *DB) ListPages(limit, offset int, tag string) ([]PageRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where := `kind = 'file' AND hidden = 0`
	args := []any{}
	if tag != "" {
		where += ` AND path IN (SELECT path FROM page_tags WHERE tag = ?)`
		args = append(args, tag)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM pages WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count pages: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT `+pageColumns+` FROM pages
		WHERE `+where+`
		ORDER BY date DESC, path ASC
		LIMIT ? OFFSET ?
	`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list pages: %w", err)
	}
	defer rows.Close()

	var out []PageRow
	for rows.Next() {
		r, err := scanPage(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *r)
	}
	return out, total, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPage(s scanner, extra ...any) (*PageRow, error) {
	var (
		r                    PageRow
		kind, tagsJSON, date string
	)
	dest := append([]any{&r.Path, &r.Href, &kind, &r.Title, &r.Description, &tagsJSON, &date, &r.Hidden, &r.Checksum}, extra...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	if kind == models.KindDirectory.String() {
		r.Kind = models.KindDirectory
	}
	if err := json.Unmarshal([]byte(tagsJSON), &r.Tags); err != nil {
		return nil, fmt.Errorf("index: decode tags of %s: %w", r.Path, err)
	}
	if len(r.Tags) == 0 {
		r.Tags = nil
	}
	if date != "" {
		d, err := models.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("index: decode date of %s: %w", r.Path, err)
		}
		r.Date = d
	}
	return &r, nil
}

func dateColumn(d models.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func joinTags(tags []string) string {
	return strings.Join(tags, " ")
}
