package codeocean

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"
)

// ReadFile downloads target, typically a link from a download URL call,
// and returns at most the client's character limit of its text. Invalid
// UTF-8 is dropped. truncated reports whether the file had more text.
func (c *Client) ReadFile(ctx context.Context, target string) (content string, truncated bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", false, fmt.Errorf("codeocean: create download request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("codeocean: download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return "", false, &APIError{StatusCode: resp.StatusCode, Method: http.MethodGet, Path: "download", Body: string(raw)}
	}

	// A rune is at most utf8.UTFMax bytes; one extra byte tells us the
	// file went on past the limit.
	limit := int64(c.maxFileChars)*utf8.UTFMax + 1
	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return "", false, fmt.Errorf("codeocean: read file: %w", err)
	}
	overflow := int64(len(raw)) == limit

	text := strings.ToValidUTF8(string(raw), "")
	if utf8.RuneCountInString(text) > c.maxFileChars {
		runes := []rune(text)
		return string(runes[:c.maxFileChars]), true, nil
	}
	return text, overflow, nil
}
