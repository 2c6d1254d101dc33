package index

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/storage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "quire-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func date(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func quiet() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM pages`).Scan(&count); err != nil {
		t.Fatalf("pages table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM page_tags`).Scan(&count); err != nil {
		t.Fatalf("page_tags table missing: %v", err)
	}
}

func TestReplaceAndGetPage(t *testing.T) {
	db := testDB(t)
	row := PageRow{
		Path:        "notes/limits.md",
		Href:        "/notes/limits/",
		Title:       "Limits",
		Description: "Sequences and limits",
		Tags:        []string{"analysis", "calculus"},
		Date:        date(t, "2024-03-01"),
		Checksum:    "abc123",
		Body:        "A sequence converges.",
	}
	if err := db.Replace([]PageRow{row}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	got, err := db.GetPage("notes/limits.md")
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if got.Title != "Limits" || got.Href != "/notes/limits/" || got.Checksum != "abc123" {
		t.Errorf("page = %+v", got)
	}
	if got.Date.String() != "2024-03-01" {
		t.Errorf("date = %s", got.Date)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "analysis" {
		t.Errorf("tags = %v", got.Tags)
	}
	if got.Body != "A sequence converges." {
		t.Errorf("body = %q", got.Body)
	}
	if got.Kind != models.KindFile {
		t.Errorf("kind = %v", got.Kind)
	}
}

func TestReplaceDropsPreviousRows(t *testing.T) {
	db := testDB(t)
	_ = db.Replace([]PageRow{{Path: "old.md", Href: "/old/", Tags: []string{"x"}}})
	_ = db.Replace([]PageRow{{Path: "new.md", Href: "/new/"}})

	if _, err := db.GetPage("old.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("old page still present: %v", err)
	}
	if _, total, _ := db.ListPages(10, 0, "x"); total != 0 {
		t.Errorf("stale tag rows: %d", total)
	}
}

func TestGetPage_NotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.GetPage("nonexistent.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListPages_OrderAndHidden(t *testing.T) {
	db := testDB(t)
	_ = db.Replace([]PageRow{
		{Path: "a.md", Href: "/a/", Date: date(t, "2024-01-01")},
		{Path: "c.md", Href: "/c/", Date: date(t, "2024-03-01")},
		{Path: "b.md", Href: "/b/", Date: date(t, "2024-03-01")},
		{Path: "_hidden.md", Href: "/_hidden/", Date: date(t, "2025-01-01"), Hidden: true},
		{Path: "sub", Href: "/sub/", Kind: models.KindDirectory, Title: "Sub"},
	})

	rows, total, err := db.ListPages(0, 0, "")
	if err != nil {
		t.Fatalf("ListPages: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	want := []string{"b.md", "c.md", "a.md"}
	for i, r := range rows {
		if r.Path != want[i] {
			t.Errorf("rows[%d] = %s, want %s", i, r.Path, want[i])
		}
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.Replace([]PageRow{
		{Path: "s.md", Href: "/s/", Title: "Search Me", Body: "uniqueword appears here"},
		{Path: "_s.md", Href: "/_s/", Title: "Hidden", Body: "uniqueword hidden", Hidden: true},
	})

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "s.md" || results[0].Href != "/s/" {
		t.Errorf("search results = %+v, want 1 hit for s.md", results)
	}
}

func TestSync(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	doc := "---\ntitle = \"Limits\"\ndescription = \"d\"\ndate = 2024-03-01\n---\nconvergent body\n"
	_ = store.Write("notes/limits.md", []byte(doc))
	_ = store.Write("_drafts/wip.md", []byte(doc))

	fm := models.Frontmatter{Title: "Limits", Description: "d", Date: date(t, "2024-03-01")}
	info := &models.Frontmatter{Title: "Notes", Description: "All notes"}
	root := models.NewDirectory("", &models.Frontmatter{Title: "Root"}, []models.Node{
		models.NewDirectory("_drafts", nil, []models.Node{models.NewFile("_drafts/wip.md", fm)}),
		models.NewDirectory("notes", info, []models.Node{
			models.NewFile("notes/limits.md", fm),
			models.NewFile("notes/gone.md", fm),
		}),
	})

	db := testDB(t)
	if err := Sync(db, root, store, quiet()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	page, err := db.GetPage("notes/limits.md")
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if page.Href != "/notes/limits/" || page.Body != "convergent body\n" || page.Checksum == "" {
		t.Errorf("page = %+v", page)
	}

	dirRow, err := db.GetPage("notes")
	if err != nil || dirRow.Kind != models.KindDirectory || dirRow.Title != "Notes" {
		t.Errorf("directory row = %+v, %v", dirRow, err)
	}
	if _, err := db.GetPage(""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("root directory catalogued: %v", err)
	}

	// Unreadable documents are still catalogued.
	if gone, err := db.GetPage("notes/gone.md"); err != nil || gone.Body != "" {
		t.Errorf("gone = %+v, %v", gone, err)
	}

	_, total, _ := db.ListPages(10, 0, "")
	if total != 2 {
		t.Errorf("visible pages = %d, want 2 (drafts hidden)", total)
	}
	wip, _ := db.GetPage("_drafts/wip.md")
	if wip == nil || !wip.Hidden {
		t.Errorf("page below hidden directory should be hidden: %+v", wip)
	}
}

func TestHidden(t *testing.T) {
	cases := map[string]bool{
		"a.md":           false,
		"_a.md":          true,
		"notes/_a.md":    true,
		"_drafts/a.md":   true,
		"notes/sub/a.md": false,
	}
	for p, want := range cases {
		if got := hidden(p); got != want {
			t.Errorf("hidden(%q) = %v, want %v", p, got, want)
		}
	}
}
