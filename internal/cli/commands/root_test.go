package commands

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	if cmd.Use != "woolball" {
		t.Errorf("expected Use to be 'woolball', got %s", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("expected Short description to be set")
	}

	for _, expected := range []string{"version", "new", "templates"} {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == expected {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected command %s to be registered", expected)
		}
	}

	for _, flag := range []string{"config", "verbose", "no-color"} {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("expected persistent flag --%s", flag)
		}
	}
}

func TestNewCommandFlags(t *testing.T) {
	cmd := NewNewCommand()

	assert.Equal(t, []string{"init"}, cmd.Aliases)
	for _, flag := range []string{"feature", "stack", "variant", "api-key", "yes", "atomic", "workdir"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "missing --%s", flag)
	}
	assert.Equal(t, "C", cmd.Flags().Lookup("workdir").Shorthand)
}

func TestNewVersionCommand(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	Version = "1.0.0-test"
	GitCommit = "abc123"
	BuildDate = "2025-01-01"
	GoVersion = "go1.23"
	defer func() {
		Version, GitCommit, BuildDate, GoVersion = "dev", "unknown", "unknown", "unknown"
	}()

	cmd := NewVersionCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "Woolball version: 1.0.0-test")
	assert.Contains(t, out, "Git commit: abc123")
	assert.Contains(t, out, "Build date: 2025-01-01")
	assert.Contains(t, out, "Go version: go1.23")
}

func TestRootAcceptsNewFlags(t *testing.T) {
	srv := newTemplateServer(t, expressFiles)
	cfg := writeConfig(t, srv)
	dir := t.TempDir()

	p := &fakePrompter{}
	_, _, err := execute(t, p, "--config", cfg, "-C", dir, "--stack", "NODEJS", "--variant", "express", "--api-key", "XYZ123")
	require.NoError(t, err)

	assert.Empty(t, p.asked)
	data, err := os.ReadFile(filepath.Join(dir, "WoolBallExpress", "server.js"))
	require.NoError(t, err)
	assert.Equal(t, "const apiKey = 'XYZ123';", string(data))
}

func TestRootRejectsArguments(t *testing.T) {
	_, _, err := execute(t, &fakePrompter{}, "unexpected")
	assert.Error(t, err)
}

func TestReportedError(t *testing.T) {
	inner := errors.New("boom")
	err := error(&reportedError{err: inner})

	assert.Equal(t, "boom", err.Error())
	assert.ErrorIs(t, err, inner)
}
