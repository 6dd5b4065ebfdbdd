// Package sanitize turns arbitrary user-supplied filenames into names that are
// safe to use directly as a single path segment under the upload directory.
package sanitize

import (
	"path"
	"strings"
)

// translit maps Cyrillic characters to their Latin romanizations.
// The soft and hard signs carry no sound of their own and map to nothing.
var translit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d",
	'е': "e", 'ё': "yo", 'ж': "zh", 'з': "z", 'и': "i",
	'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n",
	'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t",
	'у': "u", 'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch",
	'ш': "sh", 'щ': "shch", 'ъ': "", 'ы': "y", 'ь': "",
	'э': "e", 'ю': "yu", 'я': "ya",
	'А': "A", 'Б': "B", 'В': "V", 'Г': "G", 'Д': "D",
	'Е': "E", 'Ё': "Yo", 'Ж': "Zh", 'З': "Z", 'И': "I",
	'Й': "Y", 'К': "K", 'Л': "L", 'М': "M", 'Н': "N",
	'О': "O", 'П': "P", 'Р': "R", 'С': "S", 'Т': "T",
	'У': "U", 'Ф': "F", 'Х': "Kh", 'Ц': "Ts", 'Ч': "Ch",
	'Ш': "Sh", 'Щ': "Shch", 'Ъ': "", 'Ы': "Y", 'Ь': "",
	'Э': "E", 'Ю': "Yu", 'Я': "Ya",
}

const (
	// fallbackName is returned when nothing survives sanitization.
	fallbackName = "file"
	// maxNameLen bounds the resulting name length.
	maxNameLen = 200
)

// Transliterate rewrites Cyrillic characters to Latin approximations,
// character by character. Characters outside the table pass through unchanged.
func Transliterate(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if latin, ok := translit[r]; ok {
			b.WriteString(latin)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Name maps a raw filename to a safe storage name. It transliterates Cyrillic,
// strips any directory components, collapses characters outside
// [A-Za-z0-9._-] to underscores, and trims leading dots. The result is never
// empty and never contains a path separator or a ".." segment.
func Name(raw string) string {
	s := Transliterate(raw)

	// Keep only the last path component, treating both separator styles
	// as separators regardless of platform.
	s = strings.ReplaceAll(s, "\\", "/")
	s = path.Base(path.Clean("/" + s))
	if s == "/" || s == "." {
		s = ""
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		default:
			b.WriteByte('_')
		}
	}
	s = b.String()

	// A name of only dots would collapse to a traversal segment; leading
	// dots would hide the file.
	s = strings.TrimLeft(s, ".")

	if len(s) > maxNameLen {
		s = s[:maxNameLen]
		s = strings.TrimRight(s, ".")
	}
	if s == "" {
		return fallbackName
	}
	return s
}
