package ingest

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// cyrillicTranslit maps Cyrillic letters to latin sequences for slug
// derivation. Feed attribute names are predominantly Russian.
var cyrillicTranslit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

// stripMarks decomposes accented characters and removes the combining marks
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify derives a URL-safe slug from a name: transliterate Cyrillic, strip
// diacritics, lowercase, and collapse everything else to hyphens. Returns ""
// when nothing survives.
func Slugify(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))

	var translit strings.Builder
	for _, r := range lower {
		if mapped, ok := cyrillicTranslit[r]; ok {
			translit.WriteString(mapped)
		} else {
			translit.WriteRune(r)
		}
	}

	flat, _, err := transform.String(stripMarks, translit.String())
	if err != nil {
		flat = translit.String()
	}

	var b strings.Builder
	lastHyphen := true
	for _, r := range flat {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
