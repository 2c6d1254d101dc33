package site

import (
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/parser"
)

// aggregate walks dir depth-first in name order, compiling documents and
// recursing into subdirectories, then writes the directory's index page.
// A directory's last update is the newest mtime among its direct document
// children, or the Unix epoch when it has none.
func (r *run) aggregate(dir string) (models.Node, error) {
	entries, err := r.src.ReadDir(dir)
	if err != nil {
		return models.Node{}, err
	}

	var (
		info        *models.Frontmatter
		contents    []models.Node
		lastUpdated = time.Unix(0, 0).UTC()
	)

	for _, e := range entries {
		rel := path.Join(dir, e.Name())
		switch {
		case e.IsDir():
			if err := r.dst.MkdirAll(rel); err != nil {
				return models.Node{}, err
			}
			child, err := r.aggregate(rel)
			if err != nil {
				return models.Node{}, err
			}
			contents = append(contents, child)

		case !e.Type().IsRegular():
			continue

		case e.Name() == r.opts.InfoFile:
			data, err := r.src.Read(rel)
			if err != nil {
				return models.Node{}, err
			}
			fm, err := parser.Decode(string(data), false)
			if err != nil {
				return models.Node{}, fmt.Errorf("read %s: %w", rel, err)
			}
			info = &fm

		case path.Ext(e.Name()) == r.opts.DocumentExt:
			fi, err := e.Info()
			if err != nil {
				return models.Node{}, fmt.Errorf("stat %s: %w", rel, err)
			}
			if mt := fi.ModTime(); mt.After(lastUpdated) {
				lastUpdated = mt
			}
			node, err := r.compile(rel)
			if err != nil {
				return models.Node{}, err
			}
			contents = append(contents, node)

		default:
			r.logger.Debug("skipping file", slog.String("path", rel))
		}
	}

	if info != nil {
		info.Date = models.NewDate(lastUpdated.UTC())
	}
	node := models.NewDirectory(dir, info, contents)
	if err := r.writeIndex(node); err != nil {
		return models.Node{}, err
	}
	return node, nil
}
