// Package apperr declares the error kinds shared across the build pipeline.
package apperr

import "errors"

var (
	// ErrMalformedFrontmatter marks a missing or misplaced --- delimiter.
	ErrMalformedFrontmatter = errors.New("malformed frontmatter")
	// ErrStructuredData marks a metadata block that does not decode into the required shape.
	ErrStructuredData = errors.New("structured data")
	// ErrMathRender is never fatal; the compiler renders it inline.
	ErrMathRender = errors.New("math render")
	// ErrTemplateRender marks a layout failure for a page or an index.
	ErrTemplateRender = errors.New("template render")
	ErrNotFound       = errors.New("not found")
)
