// Package config loads the earley.toml project file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultPath is the file looked up when no path is given.
const DefaultPath = "earley.toml"

// DefaultEOS is the end-of-sequence token used when none is configured.
const DefaultEOS = "</s>"

var ErrNoGrammar = errors.New("no grammar configured")

type Config struct {
	Grammar    string   `toml:"grammar"`
	Start      string   `toml:"start"`
	EOS        string   `toml:"eos"`
	Vocabulary []string `toml:"vocabulary"`
	Skip       []string `toml:"skip"`
	Log        Log      `toml:"log"`
}

type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

func Default() Config {
	return Config{EOS: DefaultEOS}
}

// Load decodes the file at path over the defaults. A relative grammar path
// is resolved against the directory of the file. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("load config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	if cfg.Grammar != "" && !filepath.IsAbs(cfg.Grammar) {
		cfg.Grammar = filepath.Join(filepath.Dir(path), cfg.Grammar)
	}
	if cfg.EOS == "" {
		cfg.EOS = DefaultEOS
	}
	return cfg, nil
}

// LoadOptional is Load, except that a missing file yields the defaults.
func LoadOptional(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Validate reports configuration that no command can run with.
func (c Config) Validate() error {
	if c.Grammar == "" {
		return fmt.Errorf("%w: pass --grammar or set grammar in %s", ErrNoGrammar, DefaultPath)
	}
	return nil
}
