package ingestion

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jonathan/resume-screener/internal/types"
)

var (
	spaceRun = regexp.MustCompile(`\s+`)
	blankRun = regexp.MustCompile(`\n\n\n+`)
)

// CleanText cleans and normalizes text content while preserving structure
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	// 1. Normalize line endings (CRLF → LF)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	// 2. Split into lines for processing
	lines := strings.Split(content, "\n")

	// 3. Process each line
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned := cleanLine(line)
		cleanedLines = append(cleanedLines, cleaned)
	}

	// 4. Join lines
	result := strings.Join(cleanedLines, "\n")

	// 5. Remove excessive blank lines (max 2 consecutive)
	result = removeExcessiveBlankLines(result)

	// 6. Trim leading/trailing whitespace from entire content
	result = strings.TrimSpace(result)

	return result
}

// cleanLine cleans a single line while preserving structure
func cleanLine(line string) string {
	// Trim trailing whitespace
	line = strings.TrimRight(line, " \t")

	// Handle empty lines
	if strings.TrimSpace(line) == "" {
		return ""
	}

	// Preserve headings (Markdown # or ## etc.)
	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "#") {
		// Keep markdown headings as-is, normalize leading spaces to 0
		return trimmed
	}

	// Preserve bullet lists (Markdown - or *, and • from PDF/DOCX exports)
	if isBulletLine(trimmed) {
		// Preserve indentation before bullet, but normalize
		indent := len(line) - len(trimmed)
		if indent > 0 {
			return strings.Repeat(" ", indent) + trimmed
		}
		return trimmed
	}

	// For regular lines, normalize multiple spaces to single space
	// but preserve intentional indentation at start of line
	leadingSpace := len(line) - len(trimmed)
	content := strings.TrimSpace(line)
	// Normalize spaces in content (multiple spaces → single)
	content = spaceRun.ReplaceAllString(content, " ")
	if leadingSpace > 0 {
		return strings.Repeat(" ", leadingSpace) + content
	}
	return content
}

// isBulletLine checks if a line is a bullet list item
func isBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") ||
		strings.HasPrefix(trimmed, "• ") || strings.HasPrefix(trimmed, "· ")
}

// removeExcessiveBlankLines reduces consecutive blank lines to max 2
func removeExcessiveBlankLines(content string) string {
	// Replace 3+ consecutive newlines with 2 newlines
	return blankRun.ReplaceAllString(content, "\n\n")
}

// IngestFile reads a résumé from disk and returns its extracted text as a
// document together with content metadata.
func IngestFile(path string) (types.Document, *Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.Document{}, nil, fmt.Errorf("file not found: %w", err)
		}
		return types.Document{}, nil, fmt.Errorf("failed to read file: %w", err)
	}

	name := filepath.Base(path)
	text, err := ExtractText(name, data)
	if err != nil {
		return types.Document{}, nil, err
	}

	format, _ := DetectFormat(name)
	return types.Document{Filename: name, Content: text}, NewMetadata(name, format, text, len(data)), nil
}

// IngestDir extracts every supported file directly inside dir, in name order.
// Unsupported, hidden and empty files are reported as skipped.
func IngestDir(dir string) (*ArchiveResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	result := &ArchiveResult{
		Documents: make([]types.Document, 0),
		Skipped:   make([]SkippedFile, 0),
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		switch {
		case isHidden(name):
			result.Skipped = append(result.Skipped, SkippedFile{Name: name, Reason: SkipHidden})
			continue
		case !IsSupported(name):
			result.Skipped = append(result.Skipped, SkippedFile{Name: name, Reason: SkipUnsupported})
			continue
		}

		doc, _, err := IngestFile(filepath.Join(dir, name))
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedFile{Name: name, Reason: SkipFailed, Err: err})
			continue
		}
		if strings.TrimSpace(doc.Content) == "" {
			result.Skipped = append(result.Skipped, SkippedFile{Name: name, Reason: SkipEmpty})
			continue
		}
		result.Documents = append(result.Documents, doc)
	}
	return result, nil
}
