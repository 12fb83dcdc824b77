// Package config holds the settings shared by every vsfsj command.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is read from an optional TOML file; command-line flags override it.
type Config struct {
	// Image is the path of the filesystem image.
	Image string `toml:"image"`
	// Debug is the util.DPrintf threshold; 0 disables debug output.
	Debug uint64 `toml:"debug"`
	// LogFormat is "text" or "json".
	LogFormat string `toml:"log_format"`
}

func Default() *Config {
	return &Config{
		Image:     "vsfs.img",
		Debug:     0,
		LogFormat: "text",
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values; unknown keys are an error.
func Load(path string) (*Config, error) {
	c := Default()
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, fmt.Errorf("config %s: unknown keys %v", path, undec)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.Image == "" {
		return fmt.Errorf("image path is empty")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}
