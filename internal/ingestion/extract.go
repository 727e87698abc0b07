// Package ingestion converts uploaded résumé files into plain text.
package ingestion

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/jonathan/resume-screener/internal/fetch"
)

// Format identifies a supported résumé file format.
type Format string

// Supported formats
const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatDOCX     Format = "docx"
	FormatPDF      Format = "pdf"
)

var formatsByExt = map[string]Format{
	".txt":  FormatText,
	".text": FormatText,
	".md":   FormatMarkdown,
	".html": FormatHTML,
	".htm":  FormatHTML,
	".docx": FormatDOCX,
	".pdf":  FormatPDF,
}

// DetectFormat returns the format for filename based on its extension.
func DetectFormat(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if f, ok := formatsByExt[ext]; ok {
		return f, nil
	}
	return "", &UnsupportedFormatError{Filename: filename, Ext: ext}
}

// IsSupported reports whether filename has an extractable format.
func IsSupported(filename string) bool {
	_, err := DetectFormat(filename)
	return err == nil
}

// ExtractText returns the cleaned plain text of a résumé file.
func ExtractText(filename string, data []byte) (string, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return "", err
	}

	var text string
	switch format {
	case FormatText, FormatMarkdown:
		text = string(bytes.ToValidUTF8(data, []byte("\uFFFD")))
	case FormatHTML:
		text, err = fetch.ExtractDocumentText(string(data))
	case FormatDOCX:
		text, err = extractDOCX(data)
	case FormatPDF:
		text, err = extractPDF(data)
	}
	if err != nil {
		return "", &ExtractionError{Filename: filename, Format: format, Cause: err}
	}
	return CleanText(text), nil
}

// extractDOCX reads paragraph text from word/document.xml.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx container: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open document.xml: %w", err)
		}
		defer func() { _ = rc.Close() }()
		return wordprocessingText(io.LimitReader(rc, MaxFileBytes))
	}
	return "", errors.New("no word/document.xml found in docx")
}

// wordprocessingText walks WordprocessingML, emitting run text with
// paragraph breaks, tabs and line breaks preserved.
func wordprocessingText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var sb strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}

// extractPDF returns the plain text layer of a PDF. The parser panics on some
// malformed inputs, so panics are converted to errors.
func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(plain, MaxFileBytes)); err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	return buf.String(), nil
}
