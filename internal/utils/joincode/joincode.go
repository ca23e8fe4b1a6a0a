package joincode

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Group codes use a 32-symbol alphabet that excludes visually ambiguous
// glyphs (0/O, 1/I).
const groupAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GroupCodeLen is the fixed length of group join codes.
const GroupCodeLen = 6

// maxAttempts caps the retry-until-unique loop. With 32^6 group codes and
// 900k session codes a handful of retries is already astronomically unlikely.
const maxAttempts = 100

// ErrExhausted is returned when a unique code could not be found.
var ErrExhausted = errors.New("joincode: could not generate a unique code")

// Generator produces join codes from an injected random source, so tests can
// seed it deterministically.
type Generator struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewGenerator() *Generator {
	return &Generator{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func NewSeededGenerator(seed int64) *Generator {
	return &Generator{r: rand.New(rand.NewSource(seed))}
}

// GroupCode returns a 6-character code from the unambiguous alphabet.
func (g *Generator) GroupCode() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var b strings.Builder
	b.Grow(GroupCodeLen)
	for i := 0; i < GroupCodeLen; i++ {
		b.WriteByte(groupAlphabet[g.r.Intn(len(groupAlphabet))])
	}
	return b.String()
}

// SessionCode returns a 6-digit code in 100000–999999. Codes with leading
// zeros are never produced, matching historical behavior clients rely on.
func (g *Generator) SessionCode() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return strconv.Itoa(100000 + g.r.Intn(900000))
}

// Unique retries gen until exists reports the code is free.
func Unique(ctx context.Context, gen func() string, exists func(context.Context, string) (bool, error)) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		code := gen()
		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrExhausted
}

// ValidGroupCode reports whether s is a well-formed group join code.
// Checked before any store access; lookup itself is exact-match.
func ValidGroupCode(s string) bool {
	if len(s) != GroupCodeLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(groupAlphabet, rune(s[i])) {
			return false
		}
	}
	return true
}

// ValidSessionCode reports whether s is exactly six digits.
func ValidSessionCode(s string) bool {
	if len(s) != 6 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Normalize upper-cases a human-entered group code before validation.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
