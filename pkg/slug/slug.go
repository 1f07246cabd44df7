package slug

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength caps the number of runes in a normalized slug
const MaxLength = 80

// Letters that carry no combining mark under NFD and would otherwise be dropped
var replacer = strings.NewReplacer(
	"đ", "d", "Đ", "d",
	"ø", "o", "Ø", "o",
	"ł", "l", "Ł", "l",
	"ß", "ss",
	"æ", "ae", "Æ", "ae",
)

// Normalize converts free text into a URL-safe slug.
// "Nhà Nghỉ Đà Lạt!" -> "nha-nghi-da-lat"
func Normalize(input string) string {
	stripped := stripDiacritics(replacer.Replace(input))

	var b strings.Builder
	b.Grow(len(stripped))
	pendingHyphen := false
	count := 0

	for _, r := range strings.ToLower(stripped) {
		if count >= MaxLength {
			break
		}
		if isSlugRune(r) {
			if pendingHyphen && count > 0 {
				b.WriteByte('-')
				count++
				if count >= MaxLength {
					break
				}
			}
			b.WriteRune(r)
			count++
			pendingHyphen = false
			continue
		}
		pendingHyphen = true
	}

	return strings.Trim(b.String(), "-")
}

// ForRoom derives a room slug from its name and zero-based position
func ForRoom(name string, index int) string {
	base := Normalize(name)
	if base == "" {
		base = "room"
	}
	return base + "-" + strconv.Itoa(index+1)
}

// Valid reports whether s is already in normalized form
func Valid(s string) bool {
	return s != "" && Normalize(s) == s
}

func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func isSlugRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
