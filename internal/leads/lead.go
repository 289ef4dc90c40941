// Package leads accepts consultation requests and forwards them to the
// external lead store.
package leads

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
	"unicode"

	"salespage/pkg/submission"
)

// Sources a lead can arrive from.
const (
	SourceAPI  = "api"
	SourceForm = "form"
)

// Lead is one accepted consultation request.
type Lead struct {
	ID         string    `json:"id"`
	ReceivedAt time.Time `json:"received_at"`
	Source     string    `json:"source"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email"`
	Channel    string    `json:"channel,omitempty"`
	Message    string    `json:"message,omitempty"`
}

// Sink receives accepted leads.
type Sink interface {
	Forward(ctx context.Context, lead Lead) error
}

// DedupeKey identifies the person behind a submission regardless of
// casing, spacing, or phone punctuation.
func DedupeKey(f submission.Fields) string {
	f = f.Trimmed()
	phone := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, f.Phone)
	sum := sha256.Sum256([]byte(strings.ToLower(f.Name) + "|" + phone + "|" + strings.ToLower(f.Email)))
	return hex.EncodeToString(sum[:])
}
