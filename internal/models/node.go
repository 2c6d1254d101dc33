// Package models defines the domain types for quire.
package models

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"slices"
	"strings"
	"time"
)

// DateLayout is the display format used for dates in index listings.
const DateLayout = "02 January 2006"

// Date is a calendar date without a time component.
type Date struct {
	time.Time
}

// NewDate keeps the calendar date of t as seen in t's own location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD date. Longer inputs (RFC 3339 datetimes)
// are truncated to their date part.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(time.DateOnly) {
		s = s[:len(time.DateOnly)]
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

// UnmarshalTOML accepts TOML local dates, datetimes and date strings.
func (d *Date) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case time.Time:
		*d = NewDate(x)
		return nil
	case string:
		parsed, err := ParseDate(x)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("invalid date type %T", v)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// MarshalJSON encodes the date as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

func (d Date) String() string {
	return d.Format(time.DateOnly)
}

// Frontmatter is the metadata block of a document or a directory.
type Frontmatter struct {
	Title       string   `toml:"title" json:"title"`
	Description string   `toml:"description" json:"description"`
	Tags        []string `toml:"tags" json:"tags,omitempty"`
	Date        Date     `toml:"date" json:"date"`
}

// NormalizeTags turns Tags into a set: trimmed, deduplicated, sorted.
// A nil slice stays nil.
func (f *Frontmatter) NormalizeTags() {
	if f.Tags == nil {
		return
	}
	out := make([]string, 0, len(f.Tags))
	for _, t := range f.Tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	slices.Sort(out)
	f.Tags = slices.Compact(out)
}

// NodeKind discriminates tree nodes.
type NodeKind int

const (
	KindFile NodeKind = iota
	KindDirectory
)

func (k NodeKind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// Node is one compiled filesystem entry. Path is the source path relative
// to the content root, slash separated; the root directory has Path "".
type Node struct {
	Kind        NodeKind     `json:"kind"`
	Path        string       `json:"path"`
	Frontmatter *Frontmatter `json:"frontmatter,omitempty"`
	Info        *Frontmatter `json:"info,omitempty"`
	Contents    []Node       `json:"contents,omitempty"`
}

// NewFile builds a File node.
func NewFile(p string, fm Frontmatter) Node {
	return Node{Kind: KindFile, Path: p, Frontmatter: &fm}
}

// NewDirectory builds a Directory node.
func NewDirectory(p string, info *Frontmatter, contents []Node) Node {
	return Node{Kind: KindDirectory, Path: p, Info: info, Contents: contents}
}

// IsDir reports whether n is a Directory node.
func (n Node) IsDir() bool { return n.Kind == KindDirectory }

// Name returns the final path segment.
func (n Node) Name() string { return path.Base(n.Path) }

// Hidden reports whether the node is excluded from index listings.
func (n Node) Hidden() bool { return strings.HasPrefix(n.Name(), "_") }

// Walk visits n and every descendant in pre-order.
func (n Node) Walk(fn func(Node)) {
	fn(n)
	for _, c := range n.Contents {
		c.Walk(fn)
	}
}

// PageEntry is the display projection of a Node used to render an index.
type PageEntry struct {
	RelativePath  string       `json:"relative_path"`
	Href          string       `json:"href"`
	Frontmatter   *Frontmatter `json:"frontmatter,omitempty"`
	FormattedDate string       `json:"formatted_date"`
	IsDir         bool         `json:"is_dir"`
}

// Href is the site URL of a page or directory given its output-relative
// path without extension.
func Href(rel string) string {
	if rel == "" {
		return "/"
	}
	return (&url.URL{Path: "/" + rel + "/"}).EscapedPath()
}
