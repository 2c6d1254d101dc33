package index

import (
	"log/slog"
	"path"
	"strings"

	"github.com/starford/quire/internal/checksum"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/parser"
	"github.com/starford/quire/internal/storage"
)

// Sync replaces the catalog with the compiled tree rooted at root. Document
// bodies are read back from store, the content tree the build compiled
// from. A document that can no longer be read is still catalogued, without
// its body.
func Sync(db Catalog, root models.Node, store storage.Provider, logger *slog.Logger) error {
	var rows []PageRow
	root.Walk(func(n models.Node) {
		switch {
		case n.IsDir() && (n.Path == "" || n.Info == nil):
			return
		case n.IsDir():
			rows = append(rows, pageRow(n, n.Info, n.Path))
			return
		}

		row := pageRow(n, n.Frontmatter, strings.TrimSuffix(n.Path, path.Ext(n.Path)))
		data, err := store.Read(n.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", n.Path), slog.String("error", err.Error()))
			rows = append(rows, row)
			return
		}
		row.Checksum = checksum.Sum(data)
		if _, body, err := parser.Extract(string(data)); err == nil {
			row.Body = strings.TrimLeft(body, "\r\n")
		}
		rows = append(rows, row)
	})

	if err := db.Replace(rows); err != nil {
		return err
	}
	logger.Debug("sync: catalog replaced", slog.Int("pages", len(rows)))
	return nil
}

// pageRow builds the catalog row for n. Hidden is inherited: a page below
// a hidden directory is hidden too.
func pageRow(n models.Node, fm *models.Frontmatter, rel string) PageRow {
	r := PageRow{
		Path:   n.Path,
		Href:   models.Href(rel),
		Kind:   n.Kind,
		Hidden: hidden(n.Path),
	}
	if fm != nil {
		r.Title = fm.Title
		r.Description = fm.Description
		r.Tags = fm.Tags
		r.Date = fm.Date
	}
	return r
}

func hidden(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if strings.HasPrefix(seg, "_") {
			return true
		}
	}
	return false
}
