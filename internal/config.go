package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Site    SiteConfig        `yaml:"site"`
	Catalog CatalogConfig     `yaml:"catalog"`
	Preview PreviewConfig     `yaml:"preview"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	if err := c.Preview.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
	HTTP      HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatJSON
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatJSON, LogFormatText)),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

var extPattern = regexp.MustCompile(`^\.[A-Za-z0-9]+$`)

// SiteConfig describes the source and output trees of a build.
type SiteConfig struct {
	ContentDir  string `yaml:"content_dir"`
	OutputDir   string `yaml:"output_dir"`
	StaticDir   string `yaml:"static_dir"`
	ThemeDir    string `yaml:"theme_dir"`
	DocumentExt string `yaml:"document_ext"`
	InfoFile    string `yaml:"info_file"`
	Minify      bool   `yaml:"minify"`
	// Labels extends or overrides the admonition labels, keyed by tag.
	Labels map[string]string `yaml:"labels"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ContentDir, validation.Required),
		validation.Field(&c.OutputDir, validation.Required, validation.By(c.outputOutsideContent)),
		validation.Field(&c.DocumentExt, validation.Required, validation.Match(extPattern)),
		validation.Field(&c.InfoFile, validation.Required),
	)
}

// outputOutsideContent rejects an output dir that is, or contains, the
// content dir: every build empties the output dir first.
func (c *SiteConfig) outputOutsideContent(any) error {
	content, err := filepath.Abs(c.ContentDir)
	if err != nil {
		return err
	}
	output, err := filepath.Abs(c.OutputDir)
	if err != nil {
		return err
	}
	if content == output || strings.HasPrefix(content, output+string(os.PathSeparator)) {
		return errors.New("must not contain content_dir")
	}
	return nil
}

// CatalogConfig holds the SQLite page catalog configuration. An empty Path
// disables the catalog.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether the catalog should be opened.
func (c *CatalogConfig) Enabled() bool {
	return c.Path != ""
}

// PreviewConfig holds preview server configuration.
type PreviewConfig struct {
	Watch      bool          `yaml:"watch"`
	Debounce   time.Duration `yaml:"debounce"`
	LiveReload bool          `yaml:"live_reload"`
}

// Validate validates the preview configuration.
func (c *PreviewConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// AuthConfig holds authentication configuration for the preview API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatJSON,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Site: SiteConfig{
			ContentDir:  "./md",
			OutputDir:   "./build",
			StaticDir:   "./static",
			ThemeDir:    "./template",
			DocumentExt: ".md",
			InfoFile:    "index.toml",
			Minify:      true,
		},
		Catalog: CatalogConfig{
			Path: "./quire.db",
		},
		Preview: PreviewConfig{
			Watch:      true,
			Debounce:   200 * time.Millisecond,
			LiveReload: true,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
