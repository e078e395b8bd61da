package doctree

import (
	"fmt"
	"strings"
)

// Kind identifies the markdown construct a node represents. The set is closed;
// constructs outside it are carried as Other(name) via OtherKind.
type Kind string

const (
	KindDocument      Kind = "document"
	KindParagraph     Kind = "paragraph"
	KindText          Kind = "text"
	KindSoftBreak     Kind = "soft_break"
	KindLineBreak     Kind = "line_break"
	KindCode          Kind = "code"
	KindCodeBlock     Kind = "code_block"
	KindHeading       Kind = "heading"
	KindThematicBreak Kind = "thematic_break"
	KindBlockQuote    Kind = "block_quote"
	KindList          Kind = "list"
	KindItem          Kind = "item"
	KindLink          Kind = "link"
	KindImage         Kind = "image"
	KindEmph          Kind = "emph"
	KindStrong        Kind = "strong"
	KindStrikethrough Kind = "strikethrough"
	KindHTMLInline    Kind = "html_inline"
	KindHTMLBlock     Kind = "html_block"
)

const otherPrefix = "other:"

var knownKinds = map[Kind]struct{}{
	KindDocument: {}, KindParagraph: {}, KindText: {}, KindSoftBreak: {},
	KindLineBreak: {}, KindCode: {}, KindCodeBlock: {}, KindHeading: {},
	KindThematicBreak: {}, KindBlockQuote: {}, KindList: {}, KindItem: {},
	KindLink: {}, KindImage: {}, KindEmph: {}, KindStrong: {},
	KindStrikethrough: {}, KindHTMLInline: {}, KindHTMLBlock: {},
}

// OtherKind returns the stable fallback kind for a construct the engine does
// not model, e.g. OtherKind("Table").
func OtherKind(name string) Kind {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Unknown"
	}
	return Kind(otherPrefix + name)
}

// IsOther reports whether k is an Other(name) kind.
func (k Kind) IsOther() bool {
	return strings.HasPrefix(string(k), otherPrefix)
}

// OtherName returns the wrapped construct name for Other kinds.
func (k Kind) OtherName() string {
	if !k.IsOther() {
		return ""
	}
	return strings.TrimPrefix(string(k), otherPrefix)
}

// Valid reports whether k is a member of the closed set or a well-formed
// Other kind.
func (k Kind) Valid() bool {
	if _, ok := knownKinds[k]; ok {
		return true
	}
	return k.IsOther() && k.OtherName() != ""
}

// CarriesContent reports whether nodes of this kind hold a text payload.
func (k Kind) CarriesContent() bool {
	switch k {
	case KindText, KindCode, KindCodeBlock, KindHTMLInline, KindHTMLBlock:
		return true
	}
	return false
}

// ParseKind validates a persisted kind string.
func ParseKind(value string) (Kind, error) {
	k := Kind(value)
	if !k.Valid() {
		return "", fmt.Errorf("doctree: unknown node kind %q", value)
	}
	return k, nil
}

func (k Kind) String() string {
	return string(k)
}
