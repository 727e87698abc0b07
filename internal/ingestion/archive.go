package ingestion

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/jonathan/resume-screener/internal/types"
)

// Archive limits
const (
	// MaxFileBytes caps the uncompressed size read from any single file.
	MaxFileBytes = 10 << 20
	// MaxArchiveFiles caps the number of entries processed from one archive.
	MaxArchiveFiles = 500
)

// Skip reasons reported in ArchiveResult.Skipped
const (
	SkipHidden      = "hidden"
	SkipUnsupported = "unsupported format"
	SkipEmpty       = "no text extracted"
	SkipTooLarge    = "file too large"
	SkipFailed      = "extraction failed"
)

// SkippedFile is an archive entry that did not produce a document.
type SkippedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// ArchiveResult holds the documents extracted from an archive, in archive order.
type ArchiveResult struct {
	Documents []types.Document `json:"documents"`
	Skipped   []SkippedFile    `json:"skipped"`
}

// ExtractArchive unpacks a zip of résumés. Directories, hidden files, macOS
// resource forks, unsupported formats and files yielding no text are skipped;
// a single bad file never fails the batch.
func ExtractArchive(data []byte) (*ArchiveResult, error) {
	return ExtractArchiveFunc(data, nil)
}

// DocumentFunc receives each extracted document with the file's raw bytes.
// Changes it makes to doc, such as setting FileKey, are kept in the result.
type DocumentFunc func(doc *types.Document, raw []byte) error

// ExtractArchiveFunc is ExtractArchive with a callback invoked for every
// document kept, in archive order. An error from fn aborts extraction.
func ExtractArchiveFunc(data []byte, fn DocumentFunc) (*ArchiveResult, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ArchiveError{Message: "failed to open zip archive", Cause: err}
	}

	result := &ArchiveResult{
		Documents: make([]types.Document, 0),
		Skipped:   make([]SkippedFile, 0),
	}
	processed := 0

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if processed >= MaxArchiveFiles {
			return nil, &ArchiveError{Message: fmt.Sprintf("archive has more than %d files", MaxArchiveFiles)}
		}
		processed++

		name := path.Base(f.Name)
		if isHidden(f.Name) {
			result.Skipped = append(result.Skipped, SkippedFile{Name: f.Name, Reason: SkipHidden})
			continue
		}
		if !IsSupported(name) {
			result.Skipped = append(result.Skipped, SkippedFile{Name: f.Name, Reason: SkipUnsupported})
			continue
		}

		raw, err := readEntry(f)
		if err != nil {
			reason := SkipFailed
			if errors.Is(err, errEntryTooLarge) {
				reason = SkipTooLarge
			}
			result.Skipped = append(result.Skipped, SkippedFile{Name: f.Name, Reason: reason, Err: err})
			continue
		}

		text, err := ExtractText(name, raw)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedFile{Name: f.Name, Reason: SkipFailed, Err: err})
			continue
		}
		if strings.TrimSpace(text) == "" {
			result.Skipped = append(result.Skipped, SkippedFile{Name: f.Name, Reason: SkipEmpty})
			continue
		}

		doc := types.Document{Filename: name, Content: text}
		if fn != nil {
			if err := fn(&doc, raw); err != nil {
				return nil, fmt.Errorf("failed to handle %s: %w", f.Name, err)
			}
		}
		result.Documents = append(result.Documents, doc)
	}

	return result, nil
}

var errEntryTooLarge = errors.New("entry exceeds size limit")

func readEntry(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > MaxFileBytes {
		return nil, errEntryTooLarge
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(io.LimitReader(rc, MaxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	if len(data) > MaxFileBytes {
		return nil, errEntryTooLarge
	}
	return data, nil
}

// isHidden reports dot-files and entries under __MACOSX or dot-directories.
func isHidden(name string) bool {
	for _, part := range strings.Split(name, "/") {
		if part == "." {
			continue
		}
		if part == "__MACOSX" || strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
