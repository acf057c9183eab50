package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultPath)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
grammar = "arith.ebnf"
start = "expr"
vocabulary = ["1", "+", "(", ")"]
skip = ["WhiteSpace"]

[log]
verbosity = 2
file = "/tmp/earley.log"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(filepath.Dir(path), "arith.ebnf"), cfg.Grammar)
	require.Equal(t, "expr", cfg.Start)
	require.Equal(t, DefaultEOS, cfg.EOS)
	require.Equal(t, []string{"1", "+", "(", ")"}, cfg.Vocabulary)
	require.Equal(t, []string{"WhiteSpace"}, cfg.Skip)
	require.Equal(t, Log{Verbosity: 2, File: "/tmp/earley.log"}, cfg.Log)
	require.NoError(t, cfg.Validate())
}

func TestLoad_AbsoluteGrammarAndEOS(t *testing.T) {
	path := writeConfig(t, `
grammar = "/srv/grammars/json.ebnf"
eos = "<|end|>"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/srv/grammars/json.ebnf", cfg.Grammar)
	require.Equal(t, "<|end|>", cfg.EOS)
}

func TestLoad_UnknownKey(t *testing.T) {
	path := writeConfig(t, `
grammar = "g.ebnf"
vocab = ["x"]
`)
	_, err := Load(path)
	require.ErrorContains(t, err, "vocab")
}

func TestLoad_Syntax(t *testing.T) {
	_, err := Load(writeConfig(t, `grammar = `))
	require.Error(t, err)
}

func TestLoadOptional(t *testing.T) {
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), DefaultPath))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.ErrorIs(t, cfg.Validate(), ErrNoGrammar)

	_, err = Load(filepath.Join(t.TempDir(), DefaultPath))
	require.Error(t, err)
}
