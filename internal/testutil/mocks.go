package testutil

import (
	"errors"
	"io"
	"sync"
)

// ErrSimulated is returned by mocks configured to fail.
var ErrSimulated = errors.New("simulated error")

// MockLines is a scripted line handle that can simulate read and close
// failures. It mirrors the ReadLine/Close shape of a line reader handle.
type MockLines struct {
	mu         sync.Mutex
	lines      []string
	pos        int
	failOnNth  int
	readErr    error
	closeErr   error
	readCount  int
	closeCount int
	onRead     func(n int)
}

// NewMockLines creates a MockLines serving the given lines then io.EOF.
func NewMockLines(lines ...string) *MockLines {
	return &MockLines{lines: lines}
}

// ReadLine returns the next line, io.EOF at the end, or the configured failure.
func (m *MockLines) ReadLine() (string, error) {
	m.mu.Lock()
	m.readCount++
	n := m.readCount
	hook := m.onRead
	m.mu.Unlock()

	if hook != nil {
		hook(n)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closeCount > 0 {
		return "", io.ErrClosedPipe
	}
	if m.failOnNth > 0 && n == m.failOnNth {
		if m.readErr != nil {
			return "", m.readErr
		}
		return "", ErrSimulated
	}
	if m.pos >= len(m.lines) {
		return "", io.EOF
	}
	line := m.lines[m.pos]
	m.pos++
	return line, nil
}

// Close records the close and returns the configured close error.
func (m *MockLines) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCount++
	return m.closeErr
}

// SetFailOnNth makes the nth ReadLine call fail with err (ErrSimulated if nil).
func (m *MockLines) SetFailOnNth(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOnNth = n
	m.readErr = err
}

// SetCloseError makes every Close return err.
func (m *MockLines) SetCloseError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeErr = err
}

// OnRead registers a hook called with the 1-based read number before each read.
func (m *MockLines) OnRead(hook func(n int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRead = hook
}

// ReadCount returns the number of ReadLine calls.
func (m *MockLines) ReadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readCount
}

// CloseCount returns the number of Close calls.
func (m *MockLines) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCount
}
