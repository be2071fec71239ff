package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Gemini  GeminiConfig  `yaml:"gemini"`
	Slides  SlidesConfig  `yaml:"slides"`
	Retry   RetryConfig   `yaml:"retry"`
	OCR     OCRConfig     `yaml:"ocr"`
	Paths   PathsConfig   `yaml:"paths"`
	Whisper WhisperConfig `yaml:"whisper"`
	Logging LoggingConfig `yaml:"logging"`
	Output  OutputConfig  `yaml:"output"`
}

type GeminiConfig struct {
	APIKeys       []string `yaml:"api_keys"`
	Model         string   `yaml:"model"`
	Tier          int      `yaml:"tier"`
	SafetyMargin  float64  `yaml:"safety_margin"`
	MaxConcurrent int      `yaml:"max_concurrent"`
	UseVision     bool     `yaml:"use_vision"`
}

type SlidesConfig struct {
	SceneThreshold   float64 `yaml:"scene_threshold"`
	MaxSlides        int     `yaml:"max_slides"`
	MinSlideDuration float64 `yaml:"min_slide_duration"`
}

type RetryConfig struct {
	MaxAttempts int     `yaml:"max_attempts"`
	BaseDelay   float64 `yaml:"base_delay"`
}

type OCRConfig struct {
	Enabled      bool   `yaml:"enabled"`
	TesseractCmd string `yaml:"tesseract_cmd"`
}

type PathsConfig struct {
	Output string `yaml:"output"`
	Watch  string `yaml:"watch"`
	Temp   string `yaml:"temp"`
}

type WhisperConfig struct {
	ModelPath  string `yaml:"model_path"`
	BinaryPath string `yaml:"binary_path"`
	Language   string `yaml:"language"`
	Threads    int    `yaml:"threads"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type OutputConfig struct {
	Format   string `yaml:"format"`
	Language string `yaml:"language"`
}

// RateLimits bounds requests and tokens per minute for a usage tier.
type RateLimits struct {
	RequestsPerMinute int
	TokensPerMinute   int
}

// tierLimits maps provider usage tiers to their per-minute budgets.
// Tier 0 is the free tier.
var tierLimits = [6]RateLimits{
	{RequestsPerMinute: 3, TokensPerMinute: 40000},
	{RequestsPerMinute: 500, TokensPerMinute: 30000},
	{RequestsPerMinute: 5000, TokensPerMinute: 450000},
	{RequestsPerMinute: 5000, TokensPerMinute: 800000},
	{RequestsPerMinute: 10000, TokensPerMinute: 2000000},
	{RequestsPerMinute: 10000, TokensPerMinute: 30000000},
}

// Load reads a YAML config file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Gemini.APIKeys) == 0 {
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			c.Gemini.APIKeys = []string{key}
		} else {
			return fmt.Errorf("gemini.api_keys is required (or set GEMINI_API_KEY)")
		}
	}
	if c.Gemini.Tier < 0 || c.Gemini.Tier > 5 {
		return fmt.Errorf("gemini.tier must be between 0 and 5, got %d", c.Gemini.Tier)
	}
	if c.Gemini.SafetyMargin < 0 || c.Gemini.SafetyMargin > 1 {
		return fmt.Errorf("gemini.safety_margin must be in (0.0, 1.0], got %f", c.Gemini.SafetyMargin)
	}
	if c.Slides.SceneThreshold < 0 || c.Slides.SceneThreshold > 1 {
		return fmt.Errorf("slides.scene_threshold must be between 0.0 and 1.0, got %f", c.Slides.SceneThreshold)
	}
	if c.Slides.MaxSlides < 0 {
		return fmt.Errorf("slides.max_slides must be positive, got %d", c.Slides.MaxSlides)
	}

	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Gemini.SafetyMargin == 0 {
		c.Gemini.SafetyMargin = 0.8
	}
	if c.Gemini.MaxConcurrent == 0 {
		c.Gemini.MaxConcurrent = 2
	}
	if c.Slides.SceneThreshold == 0 {
		c.Slides.SceneThreshold = 0.3
	}
	if c.Slides.MaxSlides == 0 {
		c.Slides.MaxSlides = 100
	}
	if c.Slides.MinSlideDuration == 0 {
		c.Slides.MinSlideDuration = 2.0
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.BaseDelay == 0 {
		c.Retry.BaseDelay = 1.0
	}
	if c.OCR.TesseractCmd == "" {
		c.OCR.TesseractCmd = "tesseract"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "videos"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = os.TempDir()
	}
	if c.Whisper.BinaryPath == "" {
		c.Whisper.BinaryPath = "whisper-cli"
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "en"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 4
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Output.Format == "" {
		c.Output.Format = "markdown"
	}
	if c.Output.Language == "" {
		c.Output.Language = "en"
	}

	return nil
}

// Limits returns the per-minute rate limits for the configured tier.
func (c *Config) Limits() RateLimits {
	return tierLimits[c.Gemini.Tier]
}
