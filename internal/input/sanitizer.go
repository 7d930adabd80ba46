// Package input reads model and evidence text supplied by users before it
// reaches the inference engine.
package input

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxInputSize is 1 MiB, enough for hand-written models and
	// moderately sized evidence databases.
	DefaultMaxInputSize = 1 << 20
	// EnvMaxInputSize overrides DefaultMaxInputSize.
	EnvMaxInputSize = "MLN_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// Sanitize enforces the size limit, validates UTF-8 and strips control
// characters other than newline, tab and carriage return.
func Sanitize(text string) (string, error) {
	limit := maxInputSize()
	if len(text) > limit {
		// Rejected, never truncated: a truncated model still parses.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(text), limit)
	}
	if !utf8.ValidString(text) {
		return "", ErrInvalidUTF8
	}

	if strings.IndexFunc(text, unsafeControl) < 0 {
		return text, nil
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if !unsafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// ReadFile reads and sanitizes a text file.
func ReadFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if limit := maxInputSize(); info.Size() > int64(limit) {
		return "", fmt.Errorf("%s: %w: size=%d limit=%d", path, ErrInputTooLarge, info.Size(), limit)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text, err := Sanitize(string(data))
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return text, nil
}

// Queries trims and sanitizes query strings and drops empty ones.
func Queries(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, q := range raw {
		clean, err := Sanitize(q)
		if err != nil {
			return nil, err
		}
		if clean = strings.TrimSpace(clean); clean != "" {
			out = append(out, clean)
		}
	}
	return out, nil
}

func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

func maxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
