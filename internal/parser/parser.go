// Package parser splits documents into a TOML frontmatter block and a Markdown body.
package parser

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/models"
)

const delim = "---"

// Extract separates the frontmatter from the body of a raw document.
//
// The first line must be exactly "---". The remaining lines are rejoined and
// the first occurrence of "---" anywhere in them closes the metadata block;
// everything after it is the body.
func Extract(raw string) (models.Frontmatter, string, error) {
	lines := strings.Split(raw, "\n")
	if strings.TrimSuffix(lines[0], "\r") != delim {
		return models.Frontmatter{}, "", fmt.Errorf("%w: missing opening delimiter", apperr.ErrMalformedFrontmatter)
	}

	rest := strings.Join(lines[1:], "\n")
	block, body, ok := strings.Cut(rest, delim)
	if !ok {
		return models.Frontmatter{}, "", fmt.Errorf("%w: missing closing delimiter", apperr.ErrMalformedFrontmatter)
	}

	fm, err := Decode(block, true)
	if err != nil {
		return models.Frontmatter{}, "", err
	}
	return fm, body, nil
}

// Decode parses a TOML metadata block. title and description are always
// required; date is required only when requireDate is set, since directory
// info files get their date from their documents.
func Decode(block string, requireDate bool) (models.Frontmatter, error) {
	var fm models.Frontmatter
	md, err := toml.Decode(block, &fm)
	if err != nil {
		return models.Frontmatter{}, fmt.Errorf("%w: %v", apperr.ErrStructuredData, err)
	}

	required := []string{"title", "description"}
	if requireDate {
		required = append(required, "date")
	}
	for _, key := range required {
		if !md.IsDefined(key) {
			return models.Frontmatter{}, fmt.Errorf("%w: missing field `%s`", apperr.ErrStructuredData, key)
		}
	}

	fm.NormalizeTags()
	return fm, nil
}
