package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableRender(t *testing.T) {
	tbl := &Table{
		Title:   "Posterior summary",
		Headers: []string{"param", "mean"},
	}
	tbl.AddRow("price", "-0.1023")
	tbl.AddRow("netflix", "0.9871")

	var buf bytes.Buffer
	require.NoError(t, tbl.Render(&buf))
	out := buf.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Posterior summary", lines[0])
	assert.Contains(t, lines[1], "PARAM")
	assert.Contains(t, lines[1], "MEAN")
	assert.Contains(t, lines[2], "-----")
	assert.Contains(t, lines[3], "price")
	assert.Contains(t, lines[4], "netflix")
	assert.Contains(t, out, "-0.1023")
}

func TestTableRenderWidth(t *testing.T) {
	tbl := &Table{Headers: []string{"column", "value"}}
	tbl.AddRow("a-very-long-cell-that-overflows", "another-long-cell")

	var buf bytes.Buffer
	require.NoError(t, tbl.RenderWidth(&buf, 12))

	for _, line := range strings.Split(buf.String(), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 12, "line %q too wide", line)
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, struct {
		Name string `json:"name"`
	}{Name: "kmeans"}))

	assert.Contains(t, buf.String(), "\"name\": \"kmeans\"")
}

func TestFloat(t *testing.T) {
	assert.Equal(t, "1.23", Float(1.23456, 2))
	assert.Equal(t, "-0.5", Float(-0.5, 1))
	assert.Equal(t, "NA", Float(math.NaN(), 3))
}

func TestPValue(t *testing.T) {
	assert.Equal(t, "0.5000", PValue(0.5))
	assert.Equal(t, "0.0000", PValue(0))
	assert.Equal(t, "5.00e-05", PValue(5e-5))
	assert.Equal(t, "NA", PValue(math.NaN()))
}

func TestTerminalWidth(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, 0, TerminalWidth(f))
}
