// Package pdf extracts text from PDF files using the pdftotext tool.
//
// pdftotext ships with poppler and handles layout, encodings and broken
// cross-reference tables far better than a pure Go parser. The binary is
// resolved from PATH at extraction time so the rest of the application
// works without it.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = fmt.Errorf("%w: pdftotext not found in PATH", domain.ErrExtractorUnavailable)

// maxTitleLineLen caps how long a line can be and still pass as a title.
const maxTitleLineLen = 200

// CommandRunner abstracts external command execution for testing.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands through os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Extractor handles PDF files by shelling out to pdftotext.
type Extractor struct {
	runner CommandRunner
}

// New creates a new PDF extractor using the system pdftotext binary.
func New() *Extractor {
	return &Extractor{runner: execRunner{}}
}

// NewWithRunner creates a PDF extractor with a custom command runner.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// CheckAvailable reports whether pdftotext is installed.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns platform hints for installing pdftotext.
func InstallInstructions() string {
	return `pdftotext is required for PDF extraction.

  macOS:          brew install poppler
  Debian/Ubuntu:  sudo apt install poppler-utils
  Fedora:         sudo dnf install poppler-utils
  Windows:        choco install poppler`
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{"pdf"}
}

// Extract runs pdftotext and splits its output on form feeds into one
// segment per page.
func (e *Extractor) Extract(ctx context.Context, path string) ([]domain.Extraction, error) {
	if err := CheckAvailable(); err != nil {
		return nil, err
	}

	output, err := e.runner.Run(ctx, "pdftotext", "-enc", "UTF-8", path, "-")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		reason := "pdftotext failed"
		if isEncrypted(err) {
			reason = "encrypted PDF"
		}
		return nil, domain.NewExtractionError(path, reason, err)
	}

	content := string(output)

	var segments []domain.Segment
	for i, page := range strings.Split(content, "\f") {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		segments = append(segments, domain.Segment{
			Text:     page,
			Location: fmt.Sprintf("page %d", i+1),
		})
	}

	return []domain.Extraction{{
		Title:    extractTitle(content, path),
		Segments: segments,
	}}, nil
}

// isEncrypted reports whether the pdftotext failure looks like a
// password-protected document.
func isEncrypted(err error) bool {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg := strings.ToLower(string(exitErr.Stderr))
		if strings.Contains(msg, "password") || strings.Contains(msg, "encrypted") {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "encrypted")
}

// extractTitle takes the first short non-empty line as the title or
// falls back to the filename.
func extractTitle(content, path string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || len(line) > maxTitleLineLen {
			continue
		}
		return line
	}

	return titleFromFilename(path)
}

// titleFromFilename derives a readable title from the file name.
func titleFromFilename(path string) string {
	filename := filepath.Base(path)
	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
