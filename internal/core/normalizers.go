package core

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/table"
)

// emailRegex: something, "@", something, ".", something, with no "@" in any
// part. Tightening it changes which rows survive.
var emailRegex = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// NormalizeColumnName trims, lowercases and replaces spaces with underscores.
// Applying it twice gives the same result as applying it once.
func NormalizeColumnName(name string) string {
	name = strings.TrimSpace(name)
	name = cases.Lower(language.Und).String(name)
	return strings.ReplaceAll(name, " ", "_")
}

// TitleCase uppercases the first letter of each word and lowercases the rest.
// A word is a run of cased letters, so any other character starts a new
// word: "o'brien" becomes "O'Brien" and "jean-luc" becomes "Jean-Luc".
func TitleCase(s string) string {
	title := cases.Title(language.Und)
	var b strings.Builder
	b.Grow(len(s))
	for s != "" {
		i := strings.IndexFunc(s, isCased)
		if i < 0 {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:i])
		s = s[i:]

		j := strings.IndexFunc(s, func(r rune) bool { return !isCased(r) })
		if j < 0 {
			j = len(s)
		}
		b.WriteString(title.String(s[:j]))
		s = s[j:]
	}
	return b.String()
}

func isCased(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
}

// NormalizeEmail lowercases s and reports whether the result looks like an
// email address.
func NormalizeEmail(s string) (string, bool) {
	s = cases.Lower(language.Und).String(s)
	return s, emailRegex.MatchString(s)
}

// CollapseWhitespace trims s and replaces every run of whitespace with one space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// trimText trims text values; other kinds pass through.
func trimText(v table.Value) table.Value {
	if v.Kind != table.KindText {
		return v
	}
	return table.Text(strings.TrimSpace(v.Text))
}

// titleText title-cases text. Null passes; non-text values become null.
func titleText(v table.Value) table.Value {
	switch v.Kind {
	case table.KindText:
		return table.Text(TitleCase(v.Text))
	default:
		return table.Null()
	}
}

// emailValue lowercases then validates. Anything that is not a matching
// string becomes null.
func emailValue(v table.Value) table.Value {
	if v.Kind != table.KindText {
		return table.Null()
	}
	s, ok := NormalizeEmail(v.Text)
	if !ok {
		return table.Null()
	}
	return table.Text(s)
}

// notesValue coerces to text: null becomes "", other kinds their string form,
// then whitespace is collapsed. Never returns null.
func notesValue(v table.Value) table.Value {
	return table.Text(CollapseWhitespace(v.String()))
}
