package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woolball-xyz/woolball-cli/internal/templates"
)

func TestTemplatesList(t *testing.T) {
	srv := newTemplateServer(t, nil)
	cfg := writeConfig(t, srv)

	out, _, err := execute(t, &fakePrompter{}, "templates", "list", "--config", cfg)
	require.NoError(t, err)

	assert.Contains(t, out, "Available Templates:")
	assert.Contains(t, out, "FEATURE")
	for _, want := range []string{"WoolBallWebServices", "WoolBallMinimalApi", "WoolBallExpress", "minimal-api", "nextjs"} {
		assert.Contains(t, out, want)
	}
	assert.Equal(t, 5, strings.Count(out, "SPEECH-TO-TEXT"))
	assert.Zero(t, srv.hits.Load())
}

func TestTemplatesShow(t *testing.T) {
	srv := newTemplateServer(t, nil)
	cfg := writeConfig(t, srv)

	out, _, err := execute(t, &fakePrompter{}, "templates", "show", "speech-to-text", "nodejs", "express", "--config", cfg)
	require.NoError(t, err)

	assert.Contains(t, out, "nodejs/express")
	assert.Contains(t, out, "./WoolBallExpress")
	assert.Contains(t, out, srv.URL+"/main/stt-template/nodejs/express/server.js")

	var serverLine, usageLine string
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "server.js"):
			serverLine = line
		case strings.HasPrefix(line, "usage.js"):
			usageLine = line
		}
	}
	assert.Contains(t, serverLine, "yes")
	assert.NotContains(t, usageLine, "yes")
}

func TestTemplatesShowUnknown(t *testing.T) {
	srv := newTemplateServer(t, nil)
	cfg := writeConfig(t, srv)

	_, errOut, err := execute(t, &fakePrompter{}, "templates", "show", "SPEECH-TO-TEXT", "DOTNET", "blazor", "--config", cfg)
	assert.ErrorIs(t, err, templates.ErrUnknownSelection)
	assert.Contains(t, errOut, "UNKNOWN TEMPLATE")
}

func TestTemplatesShowArgs(t *testing.T) {
	_, _, err := execute(t, &fakePrompter{}, "templates", "show", "SPEECH-TO-TEXT")
	assert.Error(t, err)
}
