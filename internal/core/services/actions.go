package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driving"
)

// GOOS values with dedicated open/reveal/copy handling.
const (
	osDarwin  = "darwin"
	osLinux   = "linux"
	osWindows = "windows"
)

var _ driving.FileActionService = (*FileActionService)(nil)

// CommandRunner abstracts OS command execution for testing.
type CommandRunner interface {
	// Start launches a command without waiting for it to finish.
	Start(name string, args ...string) error

	// Pipe runs a command feeding input on stdin and waits for it.
	Pipe(input string, name string, args ...string) error

	// LookPath reports whether a binary is on PATH.
	LookPath(name string) (string, error)
}

// execLauncher runs commands through os/exec.
type execLauncher struct{}

func (execLauncher) Start(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

func (execLauncher) Pipe(input string, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(input)
	return cmd.Run()
}

func (execLauncher) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// FileActionService dispatches file actions to the local OS. Paths must
// resolve inside the data directory before anything is executed.
type FileActionService struct {
	dataDir string
	runner  CommandRunner
}

// NewFileActionService creates a new file action service.
func NewFileActionService(dataDir string) *FileActionService {
	return NewFileActionServiceWithRunner(dataDir, execLauncher{})
}

// NewFileActionServiceWithRunner creates a file action service with a
// custom command runner.
func NewFileActionServiceWithRunner(dataDir string, runner CommandRunner) *FileActionService {
	if abs, err := filepath.Abs(dataDir); err == nil {
		dataDir = abs
	}
	return &FileActionService{
		dataDir: dataDir,
		runner:  runner,
	}
}

// OpenFile opens the file in the platform default application.
func (s *FileActionService) OpenFile(_ context.Context, path string) error {
	abs, err := s.validatePath(path)
	if err != nil {
		return err
	}

	switch runtime.GOOS {
	case osDarwin:
		return s.runner.Start("open", abs)
	case osLinux:
		return s.runner.Start("xdg-open", abs)
	case osWindows:
		return s.runner.Start("rundll32", "url.dll,FileProtocolHandler", abs)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// RevealFile shows the file in the OS file manager.
func (s *FileActionService) RevealFile(_ context.Context, path string) error {
	abs, err := s.validatePath(path)
	if err != nil {
		return err
	}

	switch runtime.GOOS {
	case osDarwin:
		return s.runner.Start("open", "-R", abs)
	case osLinux:
		// No portable "select in file manager" on Linux. Open the
		// containing directory instead.
		return s.runner.Start("xdg-open", filepath.Dir(abs))
	case osWindows:
		return s.runner.Start("explorer", "/select,"+abs)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// CopyToClipboard copies the result's matched text to the system clipboard.
func (s *FileActionService) CopyToClipboard(_ context.Context, result *domain.SearchResult) error {
	if result == nil {
		return fmt.Errorf("%w: result is nil", domain.ErrInvalidInput)
	}

	text := result.Chunk.Content
	if text == "" {
		text = result.Preview
	}

	switch runtime.GOOS {
	case osDarwin:
		return s.runner.Pipe(text, "pbcopy")
	case osLinux:
		// xclip is the more common of the two clipboard tools
		if _, err := s.runner.LookPath("xclip"); err == nil {
			return s.runner.Pipe(text, "xclip", "-selection", "clipboard")
		}
		if _, err := s.runner.LookPath("xsel"); err == nil {
			return s.runner.Pipe(text, "xsel", "--clipboard", "--input")
		}
		return fmt.Errorf("no clipboard utility found (install xclip or xsel)")
	case osWindows:
		return s.runner.Pipe(text, "cmd", "/c", "clip")
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// validatePath resolves the path, checks containment in the data
// directory, and confirms the file exists.
func (s *FileActionService) validatePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: path must not be empty", domain.ErrInvalidInput)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	if !pathInsideRoot(s.dataDir, abs) {
		return "", fmt.Errorf("%w: %s", domain.ErrPathOutsideData, abs)
	}

	if _, err := os.Stat(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", domain.ErrNotFound, abs)
		}
		return "", fmt.Errorf("stat file: %w", err)
	}
	return abs, nil
}

// pathInsideRoot reports whether path resolves inside root.
func pathInsideRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
