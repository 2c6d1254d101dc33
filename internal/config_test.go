package internal

import (
	"strings"
	"testing"
	"time"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
}

func TestHTTPConfig_PortRange(t *testing.T) {
	for _, port := range []int{0, -1, 65536} {
		cfg := HTTPConfig{Port: port}
		if err := cfg.Validate(); err == nil {
			t.Errorf("port %d should fail validation", port)
		}
	}
	cfg := HTTPConfig{Port: 4000}
	if err := cfg.Validate(); err != nil {
		t.Errorf("port 4000: %v", err)
	}
	if cfg.Address() != ":4000" {
		t.Errorf("address = %q", cfg.Address())
	}
}

func TestApplicationConfig_LogFormat(t *testing.T) {
	cfg := ApplicationConfig{HTTP: HTTPConfig{Port: 80}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty format should default: %v", err)
	}
	if cfg.LogFormat != LogFormatJSON {
		t.Errorf("format = %q", cfg.LogFormat)
	}
	cfg.LogFormat = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown log format should fail")
	}
}

func TestSiteConfig_DocumentExt(t *testing.T) {
	cases := map[string]bool{
		".md":       true,
		".markdown": true,
		"md":        false,
		".":         false,
		".m d":      false,
		"":          false,
	}
	for ext, ok := range cases {
		cfg := NewDefaultConfig().Site
		cfg.DocumentExt = ext
		err := cfg.Validate()
		if ok && err != nil {
			t.Errorf("ext %q: %v", ext, err)
		}
		if !ok && err == nil {
			t.Errorf("ext %q should fail validation", ext)
		}
	}
}

func TestSiteConfig_OutputMustNotContainContent(t *testing.T) {
	cases := []struct {
		content, output string
		ok              bool
	}{
		{"./md", "./build", true},
		{"./md", "./md", false},
		{"./site/md", "./site", false},
		{"./md", "./md/build", true},
	}
	for _, tc := range cases {
		cfg := NewDefaultConfig().Site
		cfg.ContentDir, cfg.OutputDir = tc.content, tc.output
		err := cfg.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s -> %s: %v", tc.content, tc.output, err)
		}
		if !tc.ok && (err == nil || !strings.Contains(err.Error(), "content_dir")) {
			t.Errorf("%s -> %s: err = %v", tc.content, tc.output, err)
		}
	}
}

func TestSiteConfig_Required(t *testing.T) {
	cfg := SiteConfig{DocumentExt: ".md", InfoFile: "index.toml"}
	if err := cfg.Validate(); err == nil {
		t.Error("missing dirs should fail validation")
	}
}

func TestPreviewConfig_NegativeDebounce(t *testing.T) {
	cfg := PreviewConfig{Debounce: -time.Second}
	if err := cfg.Validate(); err == nil {
		t.Error("negative debounce should fail")
	}
}

func TestCatalogConfig_Enabled(t *testing.T) {
	if (&CatalogConfig{}).Enabled() {
		t.Error("empty path should disable the catalog")
	}
	if !(&CatalogConfig{Path: "q.db"}).Enabled() {
		t.Error("path should enable the catalog")
	}
}
