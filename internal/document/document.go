package document

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
)

// Retry policy for transient read failures (e.g. an editor replacing the
// file mid-read). A missing file on the first attempt is fatal immediately.
const (
	readRetries   = 3
	readBaseDelay = 50 * time.Millisecond
)

// Document is an immutable snapshot of an annotated SQL file.
type Document struct {
	path    string
	content string
	lines   []string
}

// Load reads the file at path and returns a Document snapshot.
//
// A file that does not exist is a fatal error with no retry. Any other read
// failure is retried with bounded exponential backoff before being surfaced.
func Load(path string) (*Document, error) {
	var lastErr error

	for attempt := 0; attempt <= readRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(readBaseDelay << (attempt - 1))
		}

		data, err := os.ReadFile(path)
		if err == nil {
			return newDocument(path, string(data)), nil
		}
		if errors.Is(err, fs.ErrNotExist) && attempt == 0 {
			return nil, fmt.Errorf("document %s does not exist: %w", path, err)
		}
		lastErr = err
	}

	return nil, fmt.Errorf("read document %s: %w", path, lastErr)
}

// New constructs a Document directly from content, bypassing the filesystem.
// Used by tests and by callers that already hold the raw text.
func New(path, content string) *Document {
	return newDocument(path, content)
}

func newDocument(path, content string) *Document {
	return &Document{
		path:    path,
		content: content,
		lines:   strings.Split(content, "\n"),
	}
}

// Reload re-reads the backing file and returns a new snapshot.
// The receiver is untouched.
func (d *Document) Reload() (*Document, error) {
	return Load(d.path)
}

// Path returns the backing file path.
func (d *Document) Path() string {
	return d.path
}

// Content returns the full raw text.
func (d *Document) Content() string {
	return d.content
}

// Lines returns the 0-based line index.
func (d *Document) Lines() []string {
	return d.lines
}
