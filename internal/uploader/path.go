package uploader

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Turkish letters are standalone code points, not accents; they need an
// explicit fold before the generic diacritic strip.
var turkishFold = strings.NewReplacer(
	"ç", "c", "Ç", "c",
	"ğ", "g", "Ğ", "g",
	"ı", "i", "I", "i",
	"İ", "i",
	"ö", "o", "Ö", "o",
	"ş", "s", "Ş", "s",
	"ü", "u", "Ü", "u",
)

// stripAccents removes combining marks after NFD decomposition, folding the
// remaining accented Latin letters to ASCII.
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SanitizeSegment maps an arbitrary brand/user/color string to a path segment
// containing only [a-z0-9_]. Sanitizing is idempotent: re-sanitizing the
// output is a no-op.
func SanitizeSegment(s string) string {
	s = turkishFold.Replace(s)
	if folded, _, err := transform.String(stripAccents, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	prevUnderscore := false
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			prevUnderscore = false
		default:
			if !prevUnderscore {
				b.WriteByte('_')
				prevUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "unknown"
	}
	return out
}

// sanitizeFilename keeps the extension's dot but sanitizes both halves.
func sanitizeFilename(name string) string {
	dot := strings.LastIndex(name, ".")
	if dot <= 0 || dot == len(name)-1 {
		return SanitizeSegment(name)
	}
	return SanitizeSegment(name[:dot]) + "." + SanitizeSegment(name[dot+1:])
}

// DestinationDir builds the deterministic remote directory for one product
// candidate: brand/user/date/productCode/color.
func DestinationDir(brand, user string, date time.Time, code, color string) string {
	segments := []string{
		SanitizeSegment(brand),
		SanitizeSegment(user),
		date.Format("2006-01-02"),
		SanitizeSegment(code),
		SanitizeSegment(color),
	}
	return strings.Join(segments, "/")
}
