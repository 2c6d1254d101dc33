package parser

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/starford/quire/internal/apperr"
)

func TestExtract_FrontmatterAndBody(t *testing.T) {
	input := "---\ntitle = \"Hello\"\ndescription = \"First note\"\ntags = [\"go\", \"math\", \"go\"]\ndate = 2024-03-01\n---\n# Hello\nBody text.\n"
	fm, body, err := Extract(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm.Title != "Hello" {
		t.Errorf("title = %q, want %q", fm.Title, "Hello")
	}
	if fm.Description != "First note" {
		t.Errorf("description = %q", fm.Description)
	}
	if len(fm.Tags) != 2 || fm.Tags[0] != "go" || fm.Tags[1] != "math" {
		t.Errorf("tags = %v, want [go math]", fm.Tags)
	}
	if got := fm.Date.String(); got != "2024-03-01" {
		t.Errorf("date = %s", got)
	}
	if body != "\n# Hello\nBody text.\n" {
		t.Errorf("body = %q", body)
	}
}

func TestExtract_RoundTrip(t *testing.T) {
	cases := []struct {
		meta  string
		title string
		desc  string
		date  string
		tags  int
	}{
		{"title = \"A\"\ndescription = \"d\"\ndate = 2024-01-01", "A", "d", "2024-01-01", 0},
		{"date = 2023-12-31\ntags = [\"x\"]\ndescription = \"\"\ntitle = \"Reordered\"", "Reordered", "", "2023-12-31", 1},
		{"title = \"Quoted date\"\ndescription = \"s\"\ndate = \"2022-06-15\"", "Quoted date", "s", "2022-06-15", 0},
		{"title = \"Datetime\"\ndescription = \"s\"\ndate = 2022-06-15T10:00:00Z", "Datetime", "s", "2022-06-15", 0},
	}
	for _, tc := range cases {
		raw := fmt.Sprintf("---\n%s\n---\nbody", tc.meta)
		fm, body, err := Extract(raw)
		if err != nil {
			t.Fatalf("%q: %v", tc.title, err)
		}
		if fm.Title != tc.title || fm.Description != tc.desc || fm.Date.String() != tc.date || len(fm.Tags) != tc.tags {
			t.Errorf("%q: got %+v", tc.title, fm)
		}
		if body != "\nbody" {
			t.Errorf("%q: body = %q", tc.title, body)
		}
	}
}

func TestExtract_TagsAbsentStaysNil(t *testing.T) {
	fm, _, err := Extract("---\ntitle = \"t\"\ndescription = \"d\"\ndate = 2024-01-01\n---\n")
	if err != nil {
		t.Fatal(err)
	}
	if fm.Tags != nil {
		t.Errorf("tags = %v, want nil", fm.Tags)
	}
}

func TestExtract_MissingOpeningDelimiter(t *testing.T) {
	for _, input := range []string{
		"",
		"title = \"x\"\n---\nbody",
		" ---\ntitle = \"x\"\n---\n",
		"----\ntitle = \"x\"\n---\n",
	} {
		_, _, err := Extract(input)
		if !errors.Is(err, apperr.ErrMalformedFrontmatter) {
			t.Errorf("%q: err = %v, want malformed frontmatter", input, err)
			continue
		}
		if !strings.Contains(err.Error(), "missing opening delimiter") {
			t.Errorf("%q: unexpected error: %v", input, err)
		}
	}
}

func TestExtract_MissingClosingDelimiter(t *testing.T) {
	_, _, err := Extract("---\ntitle = \"x\"\ndescription = \"d\"\ndate = 2024-01-01\n# Body\n")
	if !errors.Is(err, apperr.ErrMalformedFrontmatter) {
		t.Fatalf("err = %v, want malformed frontmatter", err)
	}
	if !strings.Contains(err.Error(), "missing closing delimiter") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExtract_ClosingDelimiterMidLine(t *testing.T) {
	fm, body, err := Extract("---\ntitle = \"x\"\ndescription = \"d\"\ndate = 2024-01-01\n--- trailing\n")
	if err != nil {
		t.Fatal(err)
	}
	if fm.Title != "x" || body != " trailing\n" {
		t.Errorf("fm = %+v, body = %q", fm, body)
	}
}

func TestExtract_InvalidTOML(t *testing.T) {
	_, _, err := Extract("---\n: invalid: toml: {{{\n---\nBody\n")
	if !errors.Is(err, apperr.ErrStructuredData) {
		t.Errorf("err = %v, want structured data error", err)
	}
}

func TestExtract_MissingRequiredField(t *testing.T) {
	_, _, err := Extract("---\ntitle = \"x\"\ndate = 2024-01-01\n---\n")
	if !errors.Is(err, apperr.ErrStructuredData) {
		t.Fatalf("err = %v, want structured data error", err)
	}
	if !strings.Contains(err.Error(), "description") {
		t.Errorf("error should name the field: %v", err)
	}
}

func TestExtract_WrongType(t *testing.T) {
	_, _, err := Extract("---\ntitle = 12\ndescription = \"d\"\ndate = 2024-01-01\n---\n")
	if !errors.Is(err, apperr.ErrStructuredData) {
		t.Errorf("err = %v, want structured data error", err)
	}
}

func TestDecode_DirectoryInfoWithoutDate(t *testing.T) {
	fm, err := Decode("title = \"Notes\"\ndescription = \"All notes\"\n", false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if fm.Title != "Notes" || !fm.Date.IsZero() {
		t.Errorf("fm = %+v", fm)
	}
	if _, err := Decode("title = \"Notes\"\ndescription = \"All notes\"\n", true); !errors.Is(err, apperr.ErrStructuredData) {
		t.Errorf("date should be required for documents, err = %v", err)
	}
}
