package site

import (
	"fmt"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("application/javascript", js.Minify)
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	return m
}

func (r *run) minify(page string) ([]byte, error) {
	if r.minifier == nil {
		return []byte(page), nil
	}
	out, err := r.minifier.String("text/html", page)
	if err != nil {
		return nil, fmt.Errorf("minify: %w", err)
	}
	return []byte(out), nil
}
