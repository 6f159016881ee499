// Package config loads the flipbook program configuration: defaults come from
// an embedded YAML template, a user file is laid on top, and the result is
// sanitized and validated.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	EdgesConfig struct {
		Divisor int `yaml:"divisor" validate:"min=1"`
		Cap     int `yaml:"cap" validate:"min=1"`
	}

	ZoomConfig struct {
		Min  float64 `yaml:"min" validate:"gt=0,lte=1"`
		Max  float64 `yaml:"max" validate:"gte=1"`
		Step float64 `yaml:"step" validate:"gt=0"`
	}

	PaddingConfig struct {
		Top    int `yaml:"top" validate:"gte=0"`
		Right  int `yaml:"right" validate:"gte=0"`
		Bottom int `yaml:"bottom" validate:"gte=0"`
		Left   int `yaml:"left" validate:"gte=0"`
	}

	ViewerConfig struct {
		Direction      string        `yaml:"direction" validate:"oneof=ltr rtl"`
		Mode           string        `yaml:"mode" validate:"oneof=spread single"`
		Padding        PaddingConfig `yaml:"padding"`
		Aspect         float64       `yaml:"aspect" validate:"gte=0"`
		Sound          bool          `yaml:"sound"`
		Shadow         float64       `yaml:"shadow" validate:"gte=0,lte=1"`
		FlippingTime   time.Duration `yaml:"flipping_time" validate:"gte=0"`
		ResizeDebounce time.Duration `yaml:"resize_debounce" validate:"gte=0"`
		CueDebounce    time.Duration `yaml:"cue_debounce" validate:"gte=0"`
		FreezeTimeout  time.Duration `yaml:"freeze_timeout" validate:"gte=0"`
		ShareURL       string        `yaml:"share_url" validate:"omitempty,url"`
		Edges          EdgesConfig   `yaml:"edges"`
		Zoom           ZoomConfig    `yaml:"zoom"`
	}

	ThumbnailConfig struct {
		Width   int `yaml:"width" validate:"min=16"`
		Height  int `yaml:"height" validate:"min=16"`
		Columns int `yaml:"columns" validate:"min=1"`
		Gap     int `yaml:"gap" validate:"gte=0"`
	}

	RenderConfig struct {
		Scale       float64         `yaml:"scale" validate:"gt=0"`
		FontScale   float64         `yaml:"font_scale" validate:"gte=0.5,lte=2.5"`
		Covers      bool            `yaml:"covers"`
		EndTitle    string          `yaml:"end_title"`
		PagePadding PaddingConfig   `yaml:"page_padding"`
		Thumbnails  ThumbnailConfig `yaml:"thumbnails"`
	}

	BrowserConfig struct {
		ChromePath   string        `yaml:"chrome_path" validate:"omitempty,filepath"`
		Headless     bool          `yaml:"headless"`
		NoSandbox    bool          `yaml:"no_sandbox"`
		AutoDownload bool          `yaml:"auto_download"`
		Timeout      time.Duration `yaml:"timeout" validate:"gte=0"`
		Width        int           `yaml:"width" validate:"min=320"`
		Height       int           `yaml:"height" validate:"min=240"`
		PageFlipURL  string        `yaml:"page_flip_url" validate:"required,url"`
		PDFJSURL     string        `yaml:"pdfjs_url" validate:"required,url"`
	}

	Config struct {
		Version int           `yaml:"version" validate:"eq=1"`
		Viewer  ViewerConfig  `yaml:"viewer"`
		Render  RenderConfig  `yaml:"render"`
		Browser BrowserConfig `yaml:"browser"`
		Logging LoggingConfig `yaml:"logging"`
	}
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// Only fields we define are accepted, so yaml.Unmarshal is not enough.
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, fmt.Errorf("failed to sanitize configuration: %w", err)
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, fmt.Errorf("failed to validate configuration: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at path and lays
// its values over the expanded configuration template, which supplies the
// defaults. An empty path returns the defaults.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare expands the configuration template and returns it, ready to be
// saved as a starting point for a user configuration file.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

// Dump returns cfg as YAML.
func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
