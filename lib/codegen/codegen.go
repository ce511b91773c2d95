package codegen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"guestlist/entity"
)

// Alphabet leaves out visually ambiguous characters (0, O, I, 1, L) so the
// code survives being read aloud or typed from a printed invitation.
const (
	letters = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	digits  = "23456789"

	maxAttempts = 10
)

// Generate produces a six-character guest code: three letters followed by
// three digits, e.g. KHT482.
func Generate() string {
	var b strings.Builder
	b.Grow(6)
	for i := 0; i < 3; i++ {
		b.WriteByte(letters[rand.IntN(len(letters))])
	}
	for i := 0; i < 3; i++ {
		b.WriteByte(digits[rand.IntN(len(digits))])
	}
	return b.String()
}

// Unique generates a code not yet taken according to exists, which must be
// scoped to one event. The probe loop is bounded; the unique index on
// (event_id, code) remains the actual correctness guarantee under races.
func Unique(ctx context.Context, exists func(ctx context.Context, code string) (bool, error)) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code := Generate()
		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("code existence check: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: gave up after %d attempts", entity.ErrCodeSpaceExhausted, maxAttempts)
}
