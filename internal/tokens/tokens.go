// Package tokens estimates how many model tokens a payload costs.
package tokens

import (
	"io"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE encoding used when none is configured.
const DefaultEncoding = "cl100k_base"

// Counter counts tokens with a tiktoken encoding, loaded on first use.
// When the encoding is disabled or cannot be loaded it falls back to
// Approximate.
type Counter struct {
	encoding string
	logger   *log.Logger

	once sync.Once
	tkm  *tiktoken.Tiktoken
}

// New returns a counter for encoding. The encodings "" and "none" select
// the approximation only.
func New(encoding string, logger *log.Logger) *Counter {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Counter{encoding: encoding, logger: logger}
}

// Encoding names the encoding in use, or "approx".
func (c *Counter) Encoding() string {
	if c.load() == nil {
		return "approx"
	}
	return c.encoding
}

// Count estimates the number of tokens in text.
func (c *Counter) Count(text string) int {
	if tkm := c.load(); tkm != nil {
		return len(tkm.Encode(text, nil, nil))
	}
	return Approximate(text)
}

func (c *Counter) load() *tiktoken.Tiktoken {
	if c == nil {
		return nil
	}
	c.once.Do(func() {
		if c.encoding == "" || c.encoding == "none" {
			return
		}
		tkm, err := tiktoken.GetEncoding(c.encoding)
		if err != nil {
			c.logger.Warn("token encoding unavailable, using approximation", "encoding", c.encoding, "error", err)
			return
		}
		c.tkm = tkm
	})
	return c.tkm
}

// Approximate estimates tokens as one per four characters, rounding up.
func Approximate(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}
