package site

import (
	"fmt"
	"html/template"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/quire/internal/layout"
	"github.com/starford/quire/internal/markdown"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/parser"
)

// compile turns the document at rel into <name>/index.html in the output
// tree.
func (r *run) compile(rel string) (models.Node, error) {
	logger := r.logger.With(slog.String("path", rel))
	logger.Info("rendering page")

	raw, err := r.src.Read(rel)
	if err != nil {
		return models.Node{}, fmt.Errorf("compile %s: %w", rel, err)
	}
	fm, body, err := parser.Extract(string(raw))
	if err != nil {
		return models.Node{}, fmt.Errorf("compile %s: %w", rel, err)
	}

	events := r.transformer(logger).Transform(r.tokenizer.Tokenize([]byte(body)))
	rendered := markdown.Render(events)

	page, err := r.templates.Render(layout.PageTemplate, layout.Data{
		Frontmatter:  &fm,
		RenderedBody: template.HTML(rendered),
		Path:         rel,
		LiveReload:   r.opts.LiveReload,
	})
	if err != nil {
		return models.Node{}, fmt.Errorf("compile %s: %w", rel, err)
	}
	out, err := r.minify(page)
	if err != nil {
		return models.Node{}, fmt.Errorf("compile %s: %w", rel, err)
	}
	if err := r.dst.Write(outputPath(rel, r.opts.DocumentExt), out); err != nil {
		return models.Node{}, fmt.Errorf("compile %s: %w", rel, err)
	}

	r.report.Documents++
	return models.NewFile(rel, fm), nil
}

// outputPath maps dir/name.md to dir/name/index.html.
func outputPath(rel, ext string) string {
	return path.Join(strings.TrimSuffix(rel, ext), "index.html")
}
