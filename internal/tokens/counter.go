// Package tokens estimates prompt sizes.
//
// Counts use tiktoken's cl100k_base encoding. The encoding is downloaded or
// read from the tiktoken cache on first use; when it cannot be loaded the
// counter falls back to a bytes/4 estimate and reports Exact=false.
package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog/log"
)

// Encoding is the tiktoken encoding used for counts.
const Encoding = "cl100k_base"

// Counter counts tokens. Safe for concurrent use.
type Counter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
	load func() (*tiktoken.Tiktoken, error)
}

// NewCounter creates a counter that loads the encoding lazily.
func NewCounter() *Counter {
	return &Counter{load: func() (*tiktoken.Tiktoken, error) {
		return tiktoken.GetEncoding(Encoding)
	}}
}

// NewEstimator creates a counter that never loads an encoding.
func NewEstimator() *Counter {
	return &Counter{load: func() (*tiktoken.Tiktoken, error) { return nil, nil }}
}

func (c *Counter) encoding() *tiktoken.Tiktoken {
	c.once.Do(func() {
		enc, err := c.load()
		if err != nil {
			log.Warn().Err(err).Str("encoding", Encoding).Msg("tokenizer unavailable, using estimates")
			return
		}
		c.enc = enc
	})
	return c.enc
}

// Exact reports whether counts come from the tokenizer.
func (c *Counter) Exact() bool { return c.encoding() != nil }

// Count returns the token count of text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	if enc := c.encoding(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return Estimate(text)
}

// Estimate approximates tokens as bytes/4, rounded up.
func Estimate(text string) int {
	return (len(text) + 3) / 4
}

// Stats compares an original prompt with its optimized version.
type Stats struct {
	Original  int  `json:"original"`
	Optimized int  `json:"optimized"`
	Delta     int  `json:"delta"`
	Exact     bool `json:"exact"`
}

// Stats counts both prompts.
func (c *Counter) Stats(original, optimized string) Stats {
	o, n := c.Count(original), c.Count(optimized)
	return Stats{Original: o, Optimized: n, Delta: n - o, Exact: c.Exact()}
}
