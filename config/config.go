// Package config loads and writes the plugin's HCL configuration.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// Config represents the plugin configuration.
type Config struct {
	// PageSize is the default execute_query page size when a request
	// carries none.
	PageSize int `hcl:"page_size,optional"`
	// LogLevel sets the diagnostic log level (trace..panic, logrus names).
	LogLevel string `hcl:"log_level,optional"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		PageSize: 100,
		LogLevel: "info",
	}
}

// Load reads the configuration from the given HCL file. Fields absent from
// the file keep their defaults.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(content, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file: %s", diags.Error())
	}

	cfg := DefaultConfig()
	diags = gohcl.DecodeBody(file.Body, nil, cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config: %s", diags.Error())
	}

	if cfg.PageSize < 1 {
		return nil, fmt.Errorf("page_size must be at least 1, got %d", cfg.PageSize)
	}

	return cfg, nil
}

// Export writes the configuration to the specified file in HCL format.
func Export(path string, cfg *Config) error {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	root.SetAttributeValue("page_size", cty.NumberIntVal(int64(cfg.PageSize)))
	root.SetAttributeValue("log_level", cty.StringVal(cfg.LogLevel))

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(f.Bytes()); err != nil {
		return fmt.Errorf("failed to write config to file: %w", err)
	}

	return nil
}
