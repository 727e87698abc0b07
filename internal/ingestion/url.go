package ingestion

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/resume-screener/internal/fetch"
	"github.com/jonathan/resume-screener/internal/types"
	"go.uber.org/zap"
)

var (
	// ErrHTTPRequestFailed is returned when the posting cannot be downloaded
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when no description text can be extracted
	ErrContentExtractionFailed = errors.New("content extraction failed")
)

// IngestJobURL fetches a job posting and converts it into a JobOpening.
// Platform-specific selectors are applied for known applicant tracking systems.
// Vacancies and SkillsRequired are left empty for the caller to fill.
func IngestJobURL(ctx context.Context, urlStr string, opts *fetch.Options, logger *zap.Logger) (*types.JobOpening, *Metadata, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	platform := fetch.DetectPlatform(urlStr)
	logger.Debug("fetching job posting", zap.String("url", urlStr), zap.String("platform", string(platform)))

	result, err := fetch.URL(ctx, urlStr, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}

	contentSelectors := fetch.PlatformContentSelectors(platform)
	noiseSelectors := fetch.PlatformNoiseSelectors(platform)
	text, err := fetch.ExtractMainText(result.HTML, contentSelectors, noiseSelectors...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}
	text = CleanText(text)
	if text == "" {
		return nil, nil, fmt.Errorf("%w: no text found at %s", ErrContentExtractionFailed, urlStr)
	}

	title, err := fetch.ExtractTitle(result.HTML, fetch.PlatformTitleSelectors(platform)...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}

	logger.Debug("extracted job posting",
		zap.String("title", title),
		zap.Int("html_bytes", len(result.HTML)),
		zap.Int("text_chars", len(text)),
	)

	job := &types.JobOpening{
		Title:       title,
		Description: text,
	}
	return job, NewMetadata(urlStr, FormatHTML, text, len(result.HTML)), nil
}
