// Package layout renders page and index records through html/template.
//
// Built-in templates are embedded; a theme directory may override any of
// them by providing a file that defines a template of the same name.
package layout

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/models"
)

// Template names.
const (
	PageTemplate  = "page"
	IndexTemplate = "index"
)

//go:embed templates/*.html
var builtin embed.FS

// Data is the record handed to a template.
type Data struct {
	Frontmatter  *models.Frontmatter
	Index        bool
	RenderedBody template.HTML
	Pages        []models.PageEntry
	// Title and Description come from the directory info of an index and
	// are empty when the directory has none.
	Title       string
	Description string
	Info        *models.Frontmatter
	// Path is the source path of the page or directory.
	Path       string
	LiveReload bool
}

// Renderer renders a named template.
type Renderer interface {
	Render(name string, data Data) (string, error)
}

// Templates is a Renderer over a parsed template set.
type Templates struct {
	set *template.Template
}

var funcs = template.FuncMap{
	"join": strings.Join,
	"formatDate": func(d models.Date) string {
		if d.IsZero() {
			return ""
		}
		return d.Format(models.DateLayout)
	},
}

// Load parses the built-in templates and then every *.html file in
// themeDir. A missing themeDir is not an error.
func Load(themeDir string) (*Templates, error) {
	set, err := template.New("quire").Funcs(funcs).ParseFS(builtin, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("layout: parse builtin templates: %w", err)
	}

	if themeDir == "" {
		return &Templates{set: set}, nil
	}
	files, err := filepath.Glob(filepath.Join(themeDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("layout: list theme: %w", err)
	}
	if len(files) == 0 {
		if _, statErr := os.Stat(themeDir); statErr != nil && !errors.Is(statErr, fs.ErrNotExist) {
			return nil, fmt.Errorf("layout: stat theme: %w", statErr)
		}
		return &Templates{set: set}, nil
	}
	if set, err = set.ParseFiles(files...); err != nil {
		return nil, fmt.Errorf("layout: parse theme %s: %w", themeDir, err)
	}
	return &Templates{set: set}, nil
}

// Render executes the template called name.
func (t *Templates) Render(name string, data Data) (string, error) {
	var buf bytes.Buffer
	if err := t.set.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("%w: %s: %v", apperr.ErrTemplateRender, name, err)
	}
	return buf.String(), nil
}
