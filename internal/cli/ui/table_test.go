package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_Render(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true, "STACK", "VARIANT", "DESTINATION")
	table.AddRow("DOTNET", "minimal-api", "./WoolBallMinimalApi")
	table.AddRow("NODEJS", "nextjs", ".")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "STACK   VARIANT      DESTINATION", lines[0])
	assert.Equal(t, strings.Repeat("─", 6)+"  "+strings.Repeat("─", 11)+"  "+strings.Repeat("─", 20), lines[1])
	assert.Equal(t, "DOTNET  minimal-api  ./WoolBallMinimalApi", lines[2])
	assert.Equal(t, "NODEJS  nextjs       .", lines[3])
}

func TestTable_NoHeaders(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true)
	table.AddRow("ignored")
	table.Render()

	assert.Empty(t, buf.String())
}

func TestKeyValues(t *testing.T) {
	var buf bytes.Buffer
	KeyValues(&buf, true, [2]string{"Kind", "node/express"}, [2]string{"Destination", "./WoolBallExpress"})

	assert.Equal(t, "Kind:        node/express\nDestination: ./WoolBallExpress\n", buf.String())
}

func TestList(t *testing.T) {
	var buf bytes.Buffer
	List(&buf, []string{"a.js", "b.js"}, true, true)
	assert.Equal(t, "1. a.js\n2. b.js\n", buf.String())

	buf.Reset()
	List(&buf, []string{"a.js"}, false, true)
	assert.Equal(t, "- a.js\n", buf.String())
}

func TestBanner(t *testing.T) {
	var buf bytes.Buffer
	Banner(&buf, true)
	KeyHint(&buf, true)

	assert.Contains(t, buf.String(), "/_/  |_/_/   /___/")
	assert.Contains(t, buf.String(), "Get your key at: "+KeyURL)
}

func TestBanner_SingleTrailingNewline(t *testing.T) {
	var buf bytes.Buffer
	Banner(&buf, true)

	assert.Equal(t, bannerArt, buf.String())
	assert.False(t, strings.HasSuffix(buf.String(), "\n\n"))
}
