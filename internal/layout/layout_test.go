package layout

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/models"
)

func TestBuiltinPage(t *testing.T) {
	tpl, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	fm := &models.Frontmatter{
		Title:       "Limits",
		Description: "Sequences",
		Tags:        []string{"analysis", "real"},
		Date:        models.NewDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
	}
	out, err := tpl.Render(PageTemplate, Data{Frontmatter: fm, RenderedBody: "<p>body</p>"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, frag := range []string{"<title>Limits</title>", "<p>body</p>", "01 March 2024", "analysis, real"} {
		if !strings.Contains(out, frag) {
			t.Errorf("missing %q in page", frag)
		}
	}
	if strings.Contains(out, "EventSource") {
		t.Error("live reload script rendered without LiveReload")
	}
}

func TestBuiltinIndex(t *testing.T) {
	tpl, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	out, err := tpl.Render(IndexTemplate, Data{
		Index:      true,
		Title:      "Notes",
		LiveReload: true,
		Pages: []models.PageEntry{
			{RelativePath: "sub", Href: "/sub/", IsDir: true},
			{RelativePath: "b", Href: "/b/", Frontmatter: &models.Frontmatter{Title: "Bee"}, FormattedDate: "01 March 2024"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, frag := range []string{"<title>Notes</title>", `href="/sub/"`, "sub/", ">Bee<", "01 March 2024", "EventSource"} {
		if !strings.Contains(out, frag) {
			t.Errorf("missing %q in index", frag)
		}
	}
	if strings.Index(out, `href="/sub/"`) > strings.Index(out, `href="/b/"`) {
		t.Error("pages rendered out of order")
	}
}

func TestThemeOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "page.html"), []byte(`{{define "page"}}custom {{.Frontmatter.Title}}{{end}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	tpl, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	out, err := tpl.Render(PageTemplate, Data{Frontmatter: &models.Frontmatter{Title: "X"}})
	if err != nil {
		t.Fatal(err)
	}
	if out != "custom X" {
		t.Errorf("out = %q", out)
	}
	// Untouched templates keep their built-in definition.
	if _, err := tpl.Render(IndexTemplate, Data{Index: true}); err != nil {
		t.Errorf("index: %v", err)
	}
}

func TestMissingThemeDirFallsBack(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope")); err != nil {
		t.Errorf("Load: %v", err)
	}
}

func TestBrokenThemeFails(t *testing.T) {
	dir := t.TempDir()
	_ = os.WriteFile(filepath.Join(dir, "page.html"), []byte(`{{define "page"}}{{.Nope`), 0o644)
	if _, err := Load(dir); err == nil {
		t.Error("expected parse error")
	}
}

func TestRenderErrorKind(t *testing.T) {
	tpl, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	_, err = tpl.Render("missing", Data{})
	if !errors.Is(err, apperr.ErrTemplateRender) {
		t.Errorf("err = %v, want template render error", err)
	}
}
