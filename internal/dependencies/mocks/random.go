package mocks

import (
	"sync"

	"github.com/mcoot/topicrooms/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// Queued strings are returned in order; once exhausted String falls back to
// a counter-based value so callers still get unique results.
type MockRandom struct {
	mu sync.Mutex

	StringResults []string
	stringIndex   int
	fallback      int

	// ReadByte is the byte Read fills buffers with
	ReadByte byte
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Read fills p with ReadByte
func (r *MockRandom) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range p {
		p[i] = r.ReadByte
	}
	return len(p), nil
}

// String returns the next queued result, or a deterministic fallback
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stringIndex < len(r.StringResults) {
		result := r.StringResults[r.stringIndex]
		r.stringIndex++
		return result
	}
	r.fallback++
	return fallbackString(r.fallback, length, alphabet)
}

func fallbackString(n, length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	out := make([]byte, length)
	for i := length - 1; i >= 0; i-- {
		out[i] = alphabet[n%len(alphabet)]
		n /= len(alphabet)
	}
	return string(out)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StringResults = append(r.StringResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StringResults = nil
	r.stringIndex = 0
	r.fallback = 0
}
