// Package config assembles the ambient settings of a run.
//
// Settings are layered, later layers winning key by key:
//
//  1. built-in defaults
//  2. config file (TOML or YAML, chosen by extension)
//  3. environment (STACKPIN_*)
//  4. command-line flags or request parameters, applied by the caller
//
// A key that is present in a layer wins even when its value is blank; the
// resolvers then treat a blank override as absent.
//
// Example config.toml:
//
//	timeout = 10
//	package_version = ""
//	publish = ["redis://localhost:6379/0?key=deploy:aipscan"]
//	format = "yaml"
//
//	[target]
//	package = "aipscan"
//	tool_repo = "astral-sh/uv"
//
//	[serve]
//	addr = ":8080"
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stackpin/pkg/pipeline"
)

const appName = "stackpin"

// Environment variables.
const (
	EnvConfig             = "STACKPIN_CONFIG"
	EnvTimeout            = "STACKPIN_TIMEOUT"
	EnvPackageVersion     = "STACKPIN_PACKAGE_VERSION"
	EnvToolVersion        = "STACKPIN_TOOL_VERSION"
	EnvInterpreterVersion = "STACKPIN_INTERPRETER_VERSION"
	EnvPublish            = "STACKPIN_PUBLISH"
	EnvFormat             = "STACKPIN_FORMAT"
)

// DefaultFormat is the output encoding when none is configured.
const DefaultFormat = "json"

// DefaultAddr is the listen address of the HTTP server.
const DefaultAddr = ":8080"

// Config is the merged ambient configuration.
type Config struct {
	// Timeout is kept raw (int, float or string) and normalized by the
	// pipeline.
	Timeout            any             `toml:"timeout" yaml:"timeout"`
	PackageVersion     string          `toml:"package_version" yaml:"package_version"`
	ToolVersion        string          `toml:"tool_version" yaml:"tool_version"`
	InterpreterVersion string          `toml:"interpreter_version" yaml:"interpreter_version"`
	Publish            []string        `toml:"publish" yaml:"publish"`
	Format             string          `toml:"format" yaml:"format"`
	Target             pipeline.Target `toml:"target" yaml:"target"`
	Serve              Serve           `toml:"serve" yaml:"serve"`

	// Path is the file the config was read from, empty if none.
	Path string `toml:"-" yaml:"-"`
}

// Serve configures `stackpin serve`.
type Serve struct {
	Addr string `toml:"addr" yaml:"addr"`
}

// Default returns the built-in configuration. Target fields are left blank
// so that names derived from a configured package or tool repository are
// filled in by pipeline defaults later.
func Default() Config {
	return Config{
		Format: DefaultFormat,
		Serve:  Serve{Addr: DefaultAddr},
	}
}

// Load builds the configuration from defaults, the config file and the
// process environment.
//
// path selects the file. When empty, $STACKPIN_CONFIG is used, then the
// default location (see [DefaultPath]) if that file exists. An explicitly
// named file that does not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := true
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		explicit = false
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		err := cfg.LoadFile(path)
		switch {
		case err == nil:
		case !explicit && errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, err
		}
	}

	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// DefaultPath returns the default config file location using the XDG
// standard (~/.config/stackpin/config.toml).
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// LoadFile overlays the keys present in the file at path onto c.
// Unknown keys are rejected.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = c.decodeTOML(data)
	case ".yaml", ".yml":
		err = c.decodeYAML(data)
	default:
		return fmt.Errorf("config %s: unsupported extension %q (use .toml, .yaml or .yml)", path, ext)
	}
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	c.Path = path
	return nil
}

func (c *Config) decodeTOML(data []byte) error {
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) decodeYAML(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overlays the STACKPIN_* variables reported by lookup. A variable
// that is set but empty still wins.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvTimeout); ok {
		c.Timeout = v
	}
	if v, ok := lookup(EnvPackageVersion); ok {
		c.PackageVersion = v
	}
	if v, ok := lookup(EnvToolVersion); ok {
		c.ToolVersion = v
	}
	if v, ok := lookup(EnvInterpreterVersion); ok {
		c.InterpreterVersion = v
	}
	if v, ok := lookup(EnvFormat); ok && strings.TrimSpace(v) != "" {
		c.Format = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvPublish); ok {
		c.Publish = splitList(v)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Options returns the pipeline options described by c.
func (c Config) Options() pipeline.Options {
	return pipeline.Options{
		Timeout:            c.Timeout,
		PackageVersion:     c.PackageVersion,
		ToolVersion:        c.ToolVersion,
		InterpreterVersion: c.InterpreterVersion,
		Target:             c.Target,
	}
}
