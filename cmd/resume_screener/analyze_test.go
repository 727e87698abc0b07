package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-screener/internal/types"
)

func TestAnalyzeCommand(t *testing.T) {
	resume := writeFile(t, t.TempDir(), "cv.txt", "Jane Doe\nEmail: jane@example.com\n")

	stdout, stderr, err := execute(t, "analyze", "--resume", resume)
	require.NoError(t, err)
	assert.Empty(t, stderr)

	got := decode[types.QualityResult](t, stdout)
	assert.Equal(t, 35, got.Score)
	assert.Equal(t, "Missing important sections: Education, Experience, Skills, Projects", got.Suggestions[0])
	assert.Len(t, got.Findings, len(got.Suggestions))
}

func TestAnalyzeCommand_VerboseAndOut(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "cv.txt", "Education Experience Skills Projects Contact: jane@example.com 555-123-4567 "+
		"led managed developed "+strings.Repeat("word ", 250))
	out := filepath.Join(dir, "quality.json")

	stdout, stderr, err := execute(t, "analyze", "-r", resume, "-o", out, "-v")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "RESUME QUALITY")
	assert.Contains(t, stderr, "Score: 100/100")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 100, decode[types.QualityResult](t, string(data)).Score)
}

func TestAnalyzeCommand_MissingFile(t *testing.T) {
	_, _, err := execute(t, "analyze", "-r", filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}
