// Package testutil provides deterministic embedding engines for tests.
package testutil

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"unicode"
)

// FakeEngine embeds text as a hashed bag of character trigrams, so texts
// sharing word fragments ("prefer", "prefers") score as similar. Fixed
// vectors override hashing for exact inputs, and Err forces failure.
type FakeEngine struct {
	Dims  int
	Fixed map[string][]float32
	Err   error

	mu    sync.Mutex
	calls []string
}

func NewFakeEngine() *FakeEngine {
	return &FakeEngine{Dims: 256}
}

func (f *FakeEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	if v, ok := f.Fixed[text]; ok {
		return v, nil
	}

	dims := f.Dims
	if dims <= 0 {
		dims = 256
	}
	vec := make([]float32, dims)
	for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		for _, gram := range trigrams(word) {
			h := fnv.New32a()
			_, _ = h.Write([]byte(gram))
			vec[h.Sum32()%uint32(dims)]++
		}
	}
	return vec, nil
}

func (f *FakeEngine) Name() string {
	return "fake:trigram"
}

// Calls returns the texts passed to Embed, in order.
func (f *FakeEngine) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func trigrams(word string) []string {
	r := []rune(word)
	if len(r) < 3 {
		return []string{word}
	}
	out := make([]string, 0, len(r)-2)
	for i := 0; i+3 <= len(r); i++ {
		out = append(out, string(r[i:i+3]))
	}
	return out
}
