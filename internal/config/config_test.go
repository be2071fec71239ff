package config

import (
	"os"
	"testing"
)

func validConfig() Config {
	return Config{
		Gemini: GeminiConfig{
			APIKeys: []string{"test-key"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing api keys",
			mutate:  func(c *Config) { c.Gemini.APIKeys = nil },
			wantErr: true,
		},
		{
			name:    "tier out of range",
			mutate:  func(c *Config) { c.Gemini.Tier = 6 },
			wantErr: true,
		},
		{
			name:    "negative tier",
			mutate:  func(c *Config) { c.Gemini.Tier = -1 },
			wantErr: true,
		},
		{
			name:    "scene threshold too large",
			mutate:  func(c *Config) { c.Slides.SceneThreshold = 1.5 },
			wantErr: true,
		},
		{
			name:    "safety margin too large",
			mutate:  func(c *Config) { c.Gemini.SafetyMargin = 1.2 },
			wantErr: true,
		},
	}

	os.Unsetenv("GEMINI_API_KEY")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("Model = %v, want gemini-2.5-flash", cfg.Gemini.Model)
	}
	if cfg.Gemini.SafetyMargin != 0.8 {
		t.Errorf("SafetyMargin = %v, want 0.8", cfg.Gemini.SafetyMargin)
	}
	if cfg.Slides.MaxSlides != 100 {
		t.Errorf("MaxSlides = %v, want 100", cfg.Slides.MaxSlides)
	}
	if cfg.Slides.MinSlideDuration != 2.0 {
		t.Errorf("MinSlideDuration = %v, want 2.0", cfg.Slides.MinSlideDuration)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %v, want 3", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.BaseDelay != 1.0 {
		t.Errorf("BaseDelay = %v, want 1.0", cfg.Retry.BaseDelay)
	}
}

func TestLimits(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	// Tier 0 is the free tier
	limits := cfg.Limits()
	if limits.RequestsPerMinute != 3 {
		t.Errorf("tier 0 RequestsPerMinute = %d, want 3", limits.RequestsPerMinute)
	}

	cfg.Gemini.Tier = 1
	limits = cfg.Limits()
	if limits.RequestsPerMinute != 500 {
		t.Errorf("tier 1 RequestsPerMinute = %d, want 500", limits.RequestsPerMinute)
	}
	if limits.TokensPerMinute != 30000 {
		t.Errorf("tier 1 TokensPerMinute = %d, want 30000", limits.TokensPerMinute)
	}
}

func TestLoad(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	content := `
gemini:
  api_keys:
    - "key-one"
  model: "gemini-2.5-pro"
  tier: 1

slides:
  scene_threshold: 0.25
  max_slides: 50

retry:
  max_attempts: 5

logging:
  level: "debug"
`

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Gemini.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %v, want gemini-2.5-pro", cfg.Gemini.Model)
	}
	if cfg.Slides.SceneThreshold != 0.25 {
		t.Errorf("SceneThreshold = %v, want 0.25", cfg.Slides.SceneThreshold)
	}
	if cfg.Retry.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %v, want 5", cfg.Retry.MaxAttempts)
	}
	// Defaults still applied for unset fields
	if cfg.Slides.MinSlideDuration != 2.0 {
		t.Errorf("MinSlideDuration = %v, want default 2.0", cfg.Slides.MinSlideDuration)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}
