// Package site compiles a content tree into an output tree: one page per
// document and one index page per directory.
package site

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tdewolff/minify/v2"

	"github.com/starford/quire/internal/layout"
	"github.com/starford/quire/internal/markdown"
	"github.com/starford/quire/internal/mathrender"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/storage"
	"github.com/starford/quire/internal/transform"
)

// Options describes where a build reads from and writes to.
type Options struct {
	ContentDir  string
	OutputDir   string
	StaticDir   string
	ThemeDir    string
	DocumentExt string
	InfoFile    string
	Minify      bool
	LiveReload  bool
	// Labels overrides the admonition label table.
	Labels map[string]string
}

// Option is a functional option for a Builder.
type Option func(*Builder)

// WithLogger sets the build logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithMathRenderer replaces the default math renderer.
func WithMathRenderer(r mathrender.Renderer) Option {
	return func(b *Builder) { b.math = r }
}

// WithTemplates pins the template renderer. Without it templates are
// reloaded from the theme directory on every build.
func WithTemplates(r layout.Renderer) Option {
	return func(b *Builder) { b.templates = r }
}

// Builder runs full builds. It keeps no state between builds.
type Builder struct {
	opts      Options
	logger    *slog.Logger
	math      mathrender.Renderer
	templates layout.Renderer
	tokenizer *markdown.Tokenizer
	minifier  *minify.M
}

// Report summarises one build.
type Report struct {
	Root         models.Node
	Documents    int
	Indexes      int
	MathErrors   int
	StaticCopied bool
	Duration     time.Duration
}

// New creates a Builder.
func New(opts Options, options ...Option) *Builder {
	if opts.DocumentExt == "" {
		opts.DocumentExt = ".md"
	}
	if opts.InfoFile == "" {
		opts.InfoFile = "index.toml"
	}
	b := &Builder{
		opts:   opts,
		logger: slog.Default(),
		math:   mathrender.Delimited{},
	}
	for _, o := range options {
		o(b)
	}
	b.tokenizer = markdown.NewTokenizer(markdown.WithMathRenderer(b.math))
	if opts.Minify {
		b.minifier = newMinifier()
	}
	return b
}

// Options returns the options the builder was created with.
func (b *Builder) Options() Options { return b.opts }

// Build clears the output directory, copies static assets and compiles the
// whole content tree. The first fatal error aborts the build; output
// already written stays on disk.
func (b *Builder) Build() (*Report, error) {
	start := time.Now()

	if err := checkDirs(b.opts.ContentDir, b.opts.OutputDir); err != nil {
		return nil, err
	}
	src, err := storage.NewFS(b.opts.ContentDir)
	if err != nil {
		return nil, fmt.Errorf("open content: %w", err)
	}
	dst, err := storage.Create(b.opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	if err := dst.Reset(); err != nil {
		return nil, err
	}

	report := &Report{}
	if b.opts.StaticDir != "" {
		if report.StaticCopied, err = dst.CopyFrom(b.opts.StaticDir); err != nil {
			return nil, err
		}
	}

	templates := b.templates
	if templates == nil {
		if templates, err = layout.Load(b.opts.ThemeDir); err != nil {
			return nil, err
		}
	}

	r := &run{
		Builder:   b,
		src:       src,
		dst:       dst,
		templates: templates,
		report:    report,
	}
	root, err := r.aggregate("")
	if err != nil {
		return nil, err
	}

	report.Root = root
	report.Duration = time.Since(start)
	b.logger.Info("build completed",
		slog.Int("documents", report.Documents),
		slog.Int("indexes", report.Indexes),
		slog.Int("math_errors", report.MathErrors),
		slog.Int64("duration_ms", report.Duration.Milliseconds()))
	return report, nil
}

// checkDirs refuses layouts where clearing the output would delete content.
func checkDirs(content, output string) error {
	c, err := filepath.Abs(content)
	if err != nil {
		return fmt.Errorf("resolve content dir: %w", err)
	}
	o, err := filepath.Abs(output)
	if err != nil {
		return fmt.Errorf("resolve output dir: %w", err)
	}
	if c == o || strings.HasPrefix(c, o+string(os.PathSeparator)) {
		return fmt.Errorf("output dir %s contains content dir %s", output, content)
	}
	return nil
}

// run carries the state of a single build.
type run struct {
	*Builder
	src       storage.Provider
	dst       storage.Provider
	templates layout.Renderer
	report    *Report
}

func (r *run) transformer(logger *slog.Logger) *transform.Transformer {
	opts := []transform.Option{
		transform.WithLogger(logger),
		transform.WithMathErrorHook(func(string, error) { r.report.MathErrors++ }),
	}
	if r.opts.Labels != nil {
		opts = append(opts, transform.WithLabels(r.opts.Labels))
	}
	return transform.New(r.math, opts...)
}
