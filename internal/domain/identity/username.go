package identity

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// UsernameFromEmail derives a username candidate from the local part of an
// email address: accents are folded, letters lowercased and anything outside
// [a-z0-9_.-] dropped. Short results are padded with "user".
func UsernameFromEmail(email string) string {
	local := email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		local = email[:at]
	}

	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, local)
	if err != nil {
		folded = local
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
			b.WriteRune(r)
		}
	}

	candidate := b.String()
	if len(candidate) < 3 {
		candidate = "user" + candidate
	}
	if len(candidate) > 140 {
		candidate = candidate[:140]
	}
	return candidate
}

// UsernameWithSuffix appends a numeric suffix used to resolve collisions
func UsernameWithSuffix(base string, n int) string {
	if n <= 0 {
		return base
	}
	return base + strconv.Itoa(n)
}
