// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"maps"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/focus/internal/models"
)

// MemoryStore is an in-memory key-value persistence host
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	sets   []string
	fail   error
}

func NewMemoryStore(seed map[string]string) *MemoryStore {
	values := make(map[string]string, len(seed))
	maps.Copy(values, seed)
	return &MemoryStore{values: values}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets = append(m.sets, key)
	if m.fail != nil {
		return m.fail
	}
	m.values[key] = value
	return nil
}

// Fail makes every following Set return err (nil restores normal behavior)
func (m *MemoryStore) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

// Sets returns how many times Set was called for key
func (m *MemoryStore) Sets(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, k := range m.sets {
		if k == key {
			n++
		}
	}
	return n
}

// FakePlayer is a test double for [services.Player]
type FakePlayer struct {
	mu    sync.Mutex
	State *models.PlaybackState
	Err   error
	calls []string
}

func (f *FakePlayer) Name() string { return "fake" }

func (f *FakePlayer) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.Err
}

func (f *FakePlayer) CurrentPlayback(ctx context.Context) (*models.PlaybackState, error) {
	if err := f.record("state"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.State == nil {
		return nil, nil
	}
	s := *f.State
	return &s, nil
}

func (f *FakePlayer) Play(ctx context.Context) error {
	if err := f.record("play"); err != nil {
		return err
	}
	f.setPlaying(true)
	return nil
}

func (f *FakePlayer) Pause(ctx context.Context) error {
	if err := f.record("pause"); err != nil {
		return err
	}
	f.setPlaying(false)
	return nil
}

func (f *FakePlayer) Next(ctx context.Context) error     { return f.record("next") }
func (f *FakePlayer) Previous(ctx context.Context) error { return f.record("previous") }

func (f *FakePlayer) setPlaying(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.State != nil {
		f.State.IsPlaying = v
	}
}

// Calls returns the recorded calls in order
func (f *FakePlayer) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Count returns how many times call was recorded
func (f *FakePlayer) Count(call string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
