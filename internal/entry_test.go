package internal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/index"
	"github.com/starford/quire/internal/testutil"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	base := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Site.ContentDir = filepath.Join(base, "md")
	cfg.Site.OutputDir = filepath.Join(base, "build")
	cfg.Site.StaticDir = filepath.Join(base, "static")
	cfg.Site.ThemeDir = filepath.Join(base, "template")
	cfg.Catalog.Path = filepath.Join(base, "quire.db")
	if err := os.MkdirAll(cfg.Site.ContentDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func discard() Option {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBuild_WritesSiteAndCatalog(t *testing.T) {
	cfg := testConfig(t)
	testutil.WriteFile(t, cfg.Site.ContentDir, "notes/limits.md",
		testutil.Doc("Limits", "Sequences", "2024-03-01", "# Limits\n\nConvergence.\n", "analysis"))
	testutil.WriteFile(t, cfg.Site.ContentDir, "notes/index.toml", testutil.Info("Notes", "All notes"))
	testutil.WriteFile(t, cfg.Site.StaticDir, "robots.txt", "User-agent: *\n")

	if err := Build(context.Background(), WithConfig(cfg), discard()); err != nil {
		t.Fatalf("Build: %v", err)
	}

	page := testutil.ReadFile(t, cfg.Site.OutputDir, "notes/limits/index.html")
	if !strings.Contains(page, "Limits") {
		t.Errorf("page missing title:\n%s", page)
	}
	if strings.Contains(page, "EventSource") {
		t.Error("build output should not carry the live reload script")
	}
	if got := testutil.ReadFile(t, cfg.Site.OutputDir, "robots.txt"); got != "User-agent: *\n" {
		t.Errorf("static copy = %q", got)
	}

	db, err := index.Open(cfg.Catalog.Path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	row, err := db.GetPage("notes/limits.md")
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if row.Title != "Limits" || row.Href != "/notes/limits/" {
		t.Errorf("catalog row = %+v", row)
	}
	if dir, err := db.GetPage("notes"); err != nil || dir.Title != "Notes" {
		t.Errorf("directory row = %+v, %v", dir, err)
	}
}

func TestBuild_CatalogDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Catalog.Path = ""
	testutil.WriteFile(t, cfg.Site.ContentDir, "a.md", testutil.Doc("A", "a", "2024-01-01", "a"))

	if err := Build(context.Background(), WithConfig(cfg), discard()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Site.OutputDir, "a", "index.html")); err != nil {
		t.Errorf("page not written: %v", err)
	}
}

func TestBuild_FailureNamesDocument(t *testing.T) {
	cfg := testConfig(t)
	testutil.WriteFile(t, cfg.Site.ContentDir, "broken.md", "---\ntitle = \"x\"\n")

	err := Build(context.Background(), WithConfig(cfg), discard())
	if !errors.Is(err, apperr.ErrMalformedFrontmatter) || !strings.Contains(err.Error(), "broken.md") {
		t.Errorf("err = %v", err)
	}
}

func TestBuild_RequiresConfig(t *testing.T) {
	if err := Build(context.Background(), discard()); err == nil {
		t.Error("missing config should fail")
	}
}

func TestNewLogger_Format(t *testing.T) {
	text := newLogger(ApplicationConfig{LogFormat: LogFormatText})
	if _, ok := text.Handler().(*slog.TextHandler); !ok {
		t.Errorf("text handler = %T", text.Handler())
	}
	js := newLogger(ApplicationConfig{LogFormat: LogFormatJSON})
	if _, ok := js.Handler().(*slog.JSONHandler); !ok {
		t.Errorf("json handler = %T", js.Handler())
	}
}
