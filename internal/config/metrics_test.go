package config

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestClassifyConfigLoadError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "none", err: nil, want: "none"},
		{name: "validation", err: errors.New("validate config: DATABASE_URL is required"), want: "validation"},
		{name: "parse", err: errors.New("parse FARM_COOLDOWN: invalid duration"), want: "parse"},
		{name: "other", err: errors.New("some other load error"), want: "load"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyConfigLoadError(tc.err); got != tc.want {
				t.Fatalf("classifyConfigLoadError()=%q want %q", got, tc.want)
			}
		})
	}
}

func TestNormalizeConfigEnvironment(t *testing.T) {
	if got := normalizeConfigEnvironment("  ProD  "); got != "prod" {
		t.Fatalf("expected prod, got %q", got)
	}
	if got := normalizeConfigEnvironment("   "); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{
		DatabaseURL:  "postgres://localhost/farm",
		JWTSecretKey: "jwt-secret",
		APISecretKey: "api-secret",
		FarmWindow:   50,
		VPNWindow:    3,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	missing := *cfg
	missing.APISecretKey = ""
	if err := missing.Validate(); err == nil {
		t.Fatal("expected error for missing API secret key")
	}

	badWindow := *cfg
	badWindow.FarmWindow = 0
	if err := badWindow.Validate(); err == nil {
		t.Fatal("expected error for non-positive farm window")
	}
}

func FuzzNormalizeConfigEnvironmentRobustness(f *testing.F) {
	f.Add("  ProD  ")
	f.Add("   ")
	f.Add("")
	f.Add(strings.Repeat("A", 4096))

	f.Fuzz(func(t *testing.T, raw string) {
		if len(raw) > 8192 {
			raw = raw[:8192]
		}

		got := normalizeConfigEnvironment(raw)
		if got == "" {
			t.Fatal("normalized environment must not be empty")
		}
		if strings.TrimSpace(raw) == "" && got != "unknown" {
			t.Fatalf("expected unknown for empty/whitespace input, got %q", got)
		}
		if !utf8.ValidString(got) {
			t.Fatalf("normalized environment must be valid UTF-8: %q", got)
		}

		again := normalizeConfigEnvironment(raw)
		if got != again {
			t.Fatalf("normalizeConfigEnvironment must be deterministic: first=%q second=%q", got, again)
		}
	})
}
