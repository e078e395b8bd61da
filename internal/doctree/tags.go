package doctree

import (
	"unicode"
	"unicode/utf8"
)

// TagContext carries the syntactic flags that suppress hashtag extraction.
// Flags are inherited from ancestors and only ever set, never cleared.
type TagContext struct {
	InCode        bool
	InLinkOrImage bool
	InHTML        bool
}

// Suppressed reports whether text under this context is excluded from tag
// scanning.
func (c TagContext) Suppressed() bool {
	return c.InCode || c.InLinkOrImage || c.InHTML
}

// enter returns the context a child of kind k inherits.
func (c TagContext) enter(k Kind) TagContext {
	switch k {
	case KindCode, KindCodeBlock:
		c.InCode = true
	case KindLink, KindImage:
		c.InLinkOrImage = true
	case KindHTMLInline, KindHTMLBlock:
		c.InHTML = true
	}
	return c
}

// ExtractTags returns hashtag names found in text, in order of appearance.
// A tag is '#' at the start of text or after a non letter/digit rune,
// followed by one or more letter, digit, '-' or '_' runes. Names keep their
// case.
func ExtractTags(text string) []string {
	var tags []string
	prev := rune(-1)
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == '#' && !isAlnum(prev) {
			end := i + size
			for end < len(text) {
				next, n := utf8.DecodeRuneInString(text[end:])
				if !isTagRune(next) {
					break
				}
				end += n
			}
			if end > i+size {
				tags = append(tags, text[i+size:end])
				last, _ := utf8.DecodeLastRuneInString(text[:end])
				prev = last
				i = end
				continue
			}
		}
		prev = r
		i += size
	}
	return tags
}

func isAlnum(r rune) bool {
	return r >= 0 && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

func isTagRune(r rune) bool {
	return isAlnum(r) || r == '-' || r == '_'
}
