package markdown

import (
	"strings"
	"testing"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"

	"github.com/goliatone/go-doctree/pkg/interfaces"
	"github.com/goliatone/go-doctree/pkg/testsupport"
)

func TestGoldmarkParser_ParseProducesAST(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	parsed, err := parser.Parse([]byte("# Heading\n\nHello **world**"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.Root.Kind() != ast.KindDocument {
		t.Fatalf("expected document root, got %s", parsed.Root.Kind())
	}

	heading, ok := parsed.Root.FirstChild().(*ast.Heading)
	if !ok || heading.Level != 1 {
		t.Fatalf("expected level 1 heading, got %T", parsed.Root.FirstChild())
	}
	paragraph := heading.NextSibling()
	if paragraph == nil || paragraph.Kind() != ast.KindParagraph {
		t.Fatalf("expected paragraph after heading, got %v", paragraph)
	}
	emphasis, ok := paragraph.LastChild().(*ast.Emphasis)
	if !ok || emphasis.Level != 2 {
		t.Fatalf("expected strong emphasis, got %T", paragraph.LastChild())
	}
}

func TestGoldmarkParser_GFMDefaults(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	parsed, err := parser.Parse([]byte("~~gone~~\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	paragraph := parsed.Root.FirstChild()
	if _, ok := paragraph.FirstChild().(*east.Strikethrough); !ok {
		t.Fatalf("expected strikethrough node, got %T", paragraph.FirstChild())
	}
}

func TestGoldmarkParser_ExplicitExtensions(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{Extensions: []string{"tasklist", "unknown", "TASKLIST"}})

	parsed, err := parser.Parse([]byte("~~kept~~\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	paragraph := parsed.Root.FirstChild()
	if _, ok := paragraph.FirstChild().(*east.Strikethrough); ok {
		t.Fatal("expected strikethrough to stay disabled when not requested")
	}
}

func TestGoldmarkParser_RejectsInvalidUTF8(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	if _, err := parser.Parse([]byte{0xff, 0xfe, '#'}); err != ErrInvalidUTF8 {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestGoldmarkParser_FrontMatter(t *testing.T) {
	data := testsupport.ReadFixture(t, "testdata/basic.md")

	parsed, err := NewGoldmarkParser(interfaces.ParseOptions{FrontMatter: true}).Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !strings.Contains(parsed.FrontMatter, "title: Sprint planning") {
		t.Fatalf("expected title in front matter, got %q", parsed.FrontMatter)
	}
	if _, ok := parsed.Root.FirstChild().(*ast.Heading); !ok {
		t.Fatalf("expected heading as first block once front matter is stripped, got %T", parsed.Root.FirstChild())
	}

	raw, err := NewGoldmarkParser(interfaces.ParseOptions{}).Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if raw.FrontMatter != "" {
		t.Fatalf("expected no front matter when disabled, got %q", raw.FrontMatter)
	}
	if _, ok := raw.Root.FirstChild().(*ast.ThematicBreak); !ok {
		t.Fatalf("expected leading thematic break when front matter is kept, got %T", raw.Root.FirstChild())
	}
}

func TestSplitFrontMatterWithoutHeader(t *testing.T) {
	header, body, err := SplitFrontMatter([]byte("plain #note\n"))
	if err != nil {
		t.Fatalf("SplitFrontMatter: %v", err)
	}
	if header != "" || string(body) != "plain #note\n" {
		t.Fatalf("expected untouched body, got header %q body %q", header, body)
	}
}
