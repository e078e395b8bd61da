package markdown

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-doctree/pkg/interfaces"
)

// ErrInvalidUTF8 is returned when the note text is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("markdown: source is not valid UTF-8")

// Parsed is the result of parsing one note. Root and Source belong to the
// parse that produced them; callers project them into owned values and drop
// the Parsed before doing any I/O.
type Parsed struct {
	Root        ast.Node
	Source      []byte
	FrontMatter string
}

// GoldmarkParser parses markdown with goldmark. The engine is built once and
// is safe for concurrent use; each Parse call owns its own AST.
type GoldmarkParser struct {
	options interfaces.ParseOptions
	engine  goldmark.Markdown
}

// NewGoldmarkParser builds a parser for the given options. Unknown extension
// names are ignored.
func NewGoldmarkParser(opts interfaces.ParseOptions) *GoldmarkParser {
	return &GoldmarkParser{
		options: opts,
		engine:  goldmark.New(goldmark.WithExtensions(collectExtensions(opts.Extensions)...)),
	}
}

// Parse converts raw note text into a goldmark AST. When front matter
// handling is enabled the YAML header is removed first and returned
// re-encoded on Parsed.FrontMatter.
func (p *GoldmarkParser) Parse(source []byte) (parsed *Parsed, err error) {
	if !utf8.Valid(source) {
		return nil, ErrInvalidUTF8
	}

	body := source
	var frontMatter string
	if p.options.FrontMatter {
		frontMatter, body, err = SplitFrontMatter(source)
		if err != nil {
			return nil, err
		}
	}

	// goldmark reports no errors; a panic is the only way it can reject input.
	defer func() {
		if r := recover(); r != nil {
			parsed = nil
			err = fmt.Errorf("markdown parse: %v", r)
		}
	}()

	owned := append([]byte(nil), body...)
	root := p.engine.Parser().Parse(text.NewReader(owned))
	return &Parsed{
		Root:        root,
		Source:      owned,
		FrontMatter: frontMatter,
	}, nil
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := seen[key]; ok || key == "" {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}
	return extenders
}
