package site

import (
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/starford/quire/internal/layout"
	"github.com/starford/quire/internal/models"
)

// Entries projects the visible children of a directory into index rows.
// Subdirectories come first in traversal order, then documents by date,
// newest first, ties broken by relative path.
func Entries(contents []models.Node, documentExt string) []models.PageEntry {
	var dirs, pages []models.PageEntry
	for _, n := range contents {
		if n.Hidden() {
			continue
		}
		if n.IsDir() {
			dirs = append(dirs, entry(n.Path, n.Info, true))
			continue
		}
		pages = append(pages, entry(strings.TrimSuffix(n.Path, documentExt), n.Frontmatter, false))
	}

	slices.SortStableFunc(pages, func(a, b models.PageEntry) int {
		if c := b.Frontmatter.Date.Compare(a.Frontmatter.Date.Time); c != 0 {
			return c
		}
		return strings.Compare(a.RelativePath, b.RelativePath)
	})
	return append(dirs, pages...)
}

func entry(rel string, fm *models.Frontmatter, dir bool) models.PageEntry {
	e := models.PageEntry{
		RelativePath: rel,
		Href:         models.Href(rel),
		Frontmatter:  fm,
		IsDir:        dir,
	}
	if fm != nil {
		e.FormattedDate = fm.Date.Format(models.DateLayout)
	}
	return e
}

// writeIndex renders dir/index.html for a directory node.
func (r *run) writeIndex(dir models.Node) error {
	r.logger.Info("rendering index", slog.String("path", dir.Path))

	data := layout.Data{
		Index:      true,
		Pages:      Entries(dir.Contents, r.opts.DocumentExt),
		Info:       dir.Info,
		Path:       dir.Path,
		LiveReload: r.opts.LiveReload,
	}
	if dir.Info != nil {
		data.Title = dir.Info.Title
		data.Description = dir.Info.Description
	}

	page, err := r.templates.Render(layout.IndexTemplate, data)
	if err != nil {
		return fmt.Errorf("index %s: %w", displayDir(dir.Path), err)
	}
	out, err := r.minify(page)
	if err != nil {
		return fmt.Errorf("index %s: %w", displayDir(dir.Path), err)
	}
	if err := r.dst.Write(path.Join(dir.Path, "index.html"), out); err != nil {
		return fmt.Errorf("index %s: %w", displayDir(dir.Path), err)
	}
	r.report.Indexes++
	return nil
}

func displayDir(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
