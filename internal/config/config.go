package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"

	"github.com/tarasglek/free-disk/internal/datasize"
)

var ErrInvalid = errors.New("invalid configuration")

// Config structure
type Config struct {
	RootDir           string
	FreeBytes         string
	DeleteRegexp      string
	TrackBytesDeleted bool

	LogLevel  string
	LogFormat string
	LogFile   string
	Debug     bool

	// Optional node-exporter textfile the run metrics are written to.
	MetricsTextfile string
}

// Default returns a configuration with all optional settings filled in.
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

// Load reads a TOML configuration file and applies defaults for unset values.
func Load(path string) (Config, error) {
	var c Config
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("configuration file %s cannot be read: %w", path, err)
	}

	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return c, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return c, fmt.Errorf("%w: %s: unknown key %q", ErrInvalid, path, undecoded[0].String())
	}

	c.applyDefaults()
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.DeleteRegexp == "" {
		c.DeleteRegexp = ".*"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
}

// Validate checks the settings needed for a run and returns the parsed target
// size and compiled filter.
func (c Config) Validate() (int64, *regexp.Regexp, error) {
	if c.RootDir == "" {
		return 0, nil, fmt.Errorf("%w: root directory is required", ErrInvalid)
	}
	if c.FreeBytes == "" {
		return 0, nil, fmt.Errorf("%w: free bytes target is required", ErrInvalid)
	}

	target, err := datasize.Parse(c.FreeBytes)
	if err != nil {
		return 0, nil, err
	}

	filter, err := CompileFilter(c.DeleteRegexp)
	if err != nil {
		return 0, nil, err
	}
	return target, filter, nil
}

// CompileFilter compiles a path filter that must match at the start of the
// path but may stop before its end.
func CompileFilter(expr string) (*regexp.Regexp, error) {
	// Compiled on its own first so that something like "a)|(b" cannot escape
	// the anchoring group.
	if _, err := regexp.Compile(expr); err != nil {
		return nil, fmt.Errorf("%w: delete regexp %q: %v", ErrInvalid, expr, err)
	}
	return regexp.MustCompile(`^(?:` + expr + `)`), nil
}
