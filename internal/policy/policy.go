// Package policy holds the upload rules checked before any bytes are transferred.
package policy

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultMaxSizeBytes is the reference ceiling for a single original image (5 MiB).
const DefaultMaxSizeBytes int64 = 5 * 1024 * 1024

var (
	ErrPayloadTooLarge = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// DefaultAllowedTypes is the image allow-list.
var DefaultAllowedTypes = []string{"image/png", "image/jpeg", "image/webp", "image/avif"}

// Policy is an immutable size/type rule set. The zero value is not usable; call New.
type Policy struct {
	maxSize int64
	allowed map[string]struct{}
}

// New builds a policy. maxSize <= 0 selects DefaultMaxSizeBytes and an empty allow-list
// selects DefaultAllowedTypes.
func New(maxSize int64, allowed ...string) Policy {
	if maxSize <= 0 {
		maxSize = DefaultMaxSizeBytes
	}
	if len(allowed) == 0 {
		allowed = DefaultAllowedTypes
	}
	p := Policy{maxSize: maxSize, allowed: make(map[string]struct{}, len(allowed))}
	for _, t := range allowed {
		p.allowed[normalize(t)] = struct{}{}
	}
	return p
}

// Default returns the reference policy.
func Default() Policy {
	return New(DefaultMaxSizeBytes)
}

// MaxSize returns the configured ceiling in bytes.
func (p Policy) MaxSize() int64 { return p.maxSize }

// Validate checks size first, then type, matching the order the HTTP surface reports them.
func (p Policy) Validate(size int64, mimeType string) error {
	if size > p.maxSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrPayloadTooLarge, size, p.maxSize)
	}
	if !p.Allows(mimeType) {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, mimeType)
	}
	return nil
}

// Allows reports whether mimeType is on the allow-list. Parameters such as "; charset" are ignored.
func (p Policy) Allows(mimeType string) bool {
	_, ok := p.allowed[normalize(mimeType)]
	return ok
}

func normalize(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
