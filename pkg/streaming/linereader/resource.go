package linereader

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
)

// Handle is an open backing resource. ReadLine returns io.EOF once no
// further line is available. Handles are used by one goroutine at a time.
type Handle interface {
	ReadLine() (string, error)
	Close() error
}

// Resource opens handles by locator. What a locator means is entirely up
// to the Resource: a file path, a Redis key, a URL.
type Resource interface {
	Open(ctx context.Context, locator string) (Handle, error)
}

// ResourceFunc adapts a function to a Resource.
type ResourceFunc func(ctx context.Context, locator string) (Handle, error)

// Open calls f.
func (f ResourceFunc) Open(ctx context.Context, locator string) (Handle, error) {
	return f(ctx, locator)
}

// FileResource reads lines from files on the local filesystem.
type FileResource struct{}

// Open opens the file at path.
func (FileResource) Open(_ context.Context, path string) (Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return NewReaderHandle(f), nil
}

// ReaderResource reads lines from whatever Opener returns.
type ReaderResource struct {
	Opener func(ctx context.Context, locator string) (io.ReadCloser, error)
}

// Open calls Opener and wraps the result.
func (r ReaderResource) Open(ctx context.Context, locator string) (Handle, error) {
	rc, err := r.Opener(ctx, locator)
	if err != nil {
		return nil, err
	}
	return NewReaderHandle(rc), nil
}

// readerHandle splits an io.ReadCloser into lines.
type readerHandle struct {
	rc io.ReadCloser
	br *bufio.Reader
}

// NewReaderHandle returns a Handle reading newline-terminated lines from rc.
// Line terminators ("\n" or "\r\n") are stripped; a final line without a
// terminator is still returned.
func NewReaderHandle(rc io.ReadCloser) Handle {
	return &readerHandle{rc: rc, br: bufio.NewReader(rc)}
}

func (h *readerHandle) ReadLine() (string, error) {
	line, err := h.br.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimSuffix(line, "\r"), nil
		}
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

func (h *readerHandle) Close() error {
	return h.rc.Close()
}
