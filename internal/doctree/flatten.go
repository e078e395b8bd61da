package doctree

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-doctree/internal/markdown"
)

// frame is one pending node on the flatten stack. Synthetic frames stand for
// nodes the parse tree does not hold as single children (merged text, line
// breaks, autolink labels).
type frame struct {
	node         ast.Node
	synthetic    Kind
	content      string
	parent       int
	siblingIndex int
	ctx          TagContext
}

// Flatten projects a parse tree into owned pre-nodes in pre-order, together
// with the hashtag candidates found in unsuppressed text. Any structural
// problem aborts the whole flatten with ErrMalformedTree.
func Flatten(parsed *markdown.Parsed) (*Flattened, error) {
	if parsed == nil || parsed.Root == nil {
		return nil, fmt.Errorf("%w: missing root", ErrMalformedTree)
	}
	if parsed.Root.Kind() != ast.KindDocument {
		return nil, fmt.Errorf("%w: root is %s", ErrMalformedTree, parsed.Root.Kind())
	}

	source := parsed.Source
	out := &Flattened{}
	stack := []frame{{node: parsed.Root, parent: NoParent}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		localID := len(out.Nodes)
		pre := PreNode{
			LocalID:       localID,
			ParentLocalID: top.parent,
			SiblingIndex:  top.siblingIndex,
		}

		if top.node == nil {
			if top.synthetic == "" {
				return nil, fmt.Errorf("%w: nil node under local id %d", ErrMalformedTree, top.parent)
			}
			pre.Kind = top.synthetic
			if top.synthetic.CarriesContent() {
				content := top.content
				pre.Content = &content
			}
		} else {
			kind, content, attrs, err := derive(top.node, source)
			if err != nil {
				return nil, err
			}
			pre.Kind, pre.Content, pre.Attributes = kind, content, attrs
			if localID == 0 && parsed.FrontMatter != "" {
				pre.Attributes = &Attributes{FrontMatter: parsed.FrontMatter}
			}
		}

		out.Nodes = append(out.Nodes, pre)

		if pre.Kind == KindText && pre.Content != nil && !top.ctx.Suppressed() {
			for _, name := range ExtractTags(*pre.Content) {
				out.Tags = append(out.Tags, TagCandidate{LocalNodeID: localID, Name: name})
			}
		}

		if top.node == nil {
			continue
		}
		children, err := childFrames(top.node, source, localID, top.ctx.enter(pre.Kind))
		if err != nil {
			return nil, err
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	return out, nil
}

// childFrames lists the frames for n's children in document order. Runs of
// adjacent text siblings become one Text frame; a run ends at a line break.
func childFrames(n ast.Node, source []byte, parent int, ctx TagContext) ([]frame, error) {
	switch node := n.(type) {
	case *ast.AutoLink:
		label := node.Label(source)
		return []frame{{synthetic: KindText, content: string(label), parent: parent, ctx: ctx}}, nil
	case *ast.CodeSpan, *ast.CodeBlock, *ast.FencedCodeBlock, *ast.RawHTML, *ast.HTMLBlock:
		return nil, nil
	}

	var frames []frame
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if _, ok := c.(*east.TaskCheckBox); ok {
			continue
		}
		t, ok := c.(*ast.Text)
		if !ok {
			frames = append(frames, frame{node: c, parent: parent, siblingIndex: len(frames), ctx: ctx})
			continue
		}

		var raw []byte
		for {
			value, err := segmentValue(t.Segment, source)
			if err != nil {
				return nil, err
			}
			raw = append(raw, value...)
			next, ok := t.NextSibling().(*ast.Text)
			if !ok || t.SoftLineBreak() || t.HardLineBreak() {
				break
			}
			t = next
		}
		c = t

		frames = append(frames, frame{synthetic: KindText, content: textValue(raw), parent: parent, siblingIndex: len(frames), ctx: ctx})
		switch {
		case t.HardLineBreak():
			frames = append(frames, frame{synthetic: KindLineBreak, parent: parent, siblingIndex: len(frames), ctx: ctx})
		case t.SoftLineBreak():
			frames = append(frames, frame{synthetic: KindSoftBreak, parent: parent, siblingIndex: len(frames), ctx: ctx})
		}
	}
	return frames, nil
}

// textValue returns the literal value of inline text, with backslash
// escapes removed and character references resolved.
func textValue(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '\\' && i+1 < len(raw) && util.IsPunct(raw[i+1]):
			i++
			b.WriteByte(raw[i])
		case c == '&':
			end := referenceEnd(raw, i)
			if end < 0 {
				b.WriteByte(c)
				continue
			}
			b.Write(util.ResolveEntityNames(util.ResolveNumericReferences(raw[i : end+1])))
			i = end
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// referenceEnd returns the index of the ';' closing a character reference
// that starts at raw[start], or -1.
func referenceEnd(raw []byte, start int) int {
	for j := start + 1; j < len(raw) && j-start <= 32; j++ {
		switch c := raw[j]; {
		case c == ';':
			if j == start+1 {
				return -1
			}
			return j
		case c != '#' && !util.IsAlphaNumeric(c):
			return -1
		}
	}
	return -1
}

// derive maps one parse node to its kind, content and attributes.
func derive(n ast.Node, source []byte) (Kind, *string, *Attributes, error) {
	switch node := n.(type) {
	case *ast.Document:
		return KindDocument, nil, nil, nil
	case *ast.Paragraph, *ast.TextBlock:
		return KindParagraph, nil, nil, nil
	case *ast.String:
		value := string(node.Value)
		return KindText, &value, nil, nil
	case *ast.CodeSpan:
		value, err := inlineText(node, source)
		if err != nil {
			return "", nil, nil, err
		}
		return KindCode, &value, nil, nil
	case *ast.FencedCodeBlock:
		value, err := linesValue(node.Lines(), source)
		if err != nil {
			return "", nil, nil, err
		}
		attrs := &Attributes{Fenced: true}
		if node.Info != nil {
			info, err := segmentValue(node.Info.Segment, source)
			if err != nil {
				return "", nil, nil, err
			}
			attrs.Info = strings.TrimSpace(info)
		}
		return KindCodeBlock, &value, attrs, nil
	case *ast.CodeBlock:
		value, err := linesValue(node.Lines(), source)
		if err != nil {
			return "", nil, nil, err
		}
		return KindCodeBlock, &value, nil, nil
	case *ast.Heading:
		return KindHeading, nil, &Attributes{Level: node.Level}, nil
	case *ast.ThematicBreak:
		return KindThematicBreak, nil, nil, nil
	case *ast.Blockquote:
		return KindBlockQuote, nil, nil, nil
	case *ast.List:
		attrs := &Attributes{Ordered: node.IsOrdered(), Tight: node.IsTight}
		if node.IsOrdered() {
			attrs.Start = node.Start
			attrs.Delimiter = string(node.Marker)
		} else {
			attrs.BulletChar = string(node.Marker)
		}
		return KindList, nil, attrs, nil
	case *ast.ListItem:
		var attrs *Attributes
		if first := node.FirstChild(); first != nil {
			if box, ok := first.FirstChild().(*east.TaskCheckBox); ok {
				attrs = &Attributes{Checked: boolPtr(box.IsChecked)}
			}
		}
		return KindItem, nil, attrs, nil
	case *ast.Link:
		return KindLink, nil, &Attributes{URL: string(node.Destination), Title: string(node.Title)}, nil
	case *ast.Image:
		return KindImage, nil, &Attributes{URL: string(node.Destination), Title: string(node.Title)}, nil
	case *ast.AutoLink:
		return KindLink, nil, &Attributes{URL: string(node.URL(source)), Autolink: true}, nil
	case *ast.Emphasis:
		if node.Level >= 2 {
			return KindStrong, nil, nil, nil
		}
		return KindEmph, nil, nil, nil
	case *east.Strikethrough:
		return KindStrikethrough, nil, nil, nil
	case *ast.RawHTML:
		value, err := linesValue(node.Segments, source)
		if err != nil {
			return "", nil, nil, err
		}
		return KindHTMLInline, &value, nil, nil
	case *ast.HTMLBlock:
		value, err := linesValue(node.Lines(), source)
		if err != nil {
			return "", nil, nil, err
		}
		if node.HasClosure() {
			closure, err := segmentValue(node.ClosureLine, source)
			if err != nil {
				return "", nil, nil, err
			}
			value += closure
		}
		return KindHTMLBlock, &value, nil, nil
	default:
		return OtherKind(n.Kind().String()), nil, nil, nil
	}
}

func segmentValue(seg text.Segment, source []byte) (string, error) {
	if seg.Start < 0 || seg.Stop < seg.Start || seg.Stop > len(source) {
		return "", fmt.Errorf("%w: segment [%d:%d] outside source of %d bytes", ErrMalformedTree, seg.Start, seg.Stop, len(source))
	}
	return string(seg.Value(source)), nil
}

func linesValue(lines *text.Segments, source []byte) (string, error) {
	if lines == nil {
		return "", nil
	}
	var b strings.Builder
	for i := 0; i < lines.Len(); i++ {
		value, err := segmentValue(lines.At(i), source)
		if err != nil {
			return "", err
		}
		b.WriteString(value)
	}
	return b.String(), nil
}

// inlineText concatenates the text held by a code span's children.
func inlineText(n ast.Node, source []byte) (string, error) {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch child := c.(type) {
		case *ast.Text:
			value, err := segmentValue(child.Segment, source)
			if err != nil {
				return "", err
			}
			b.WriteString(value)
		case *ast.String:
			b.Write(child.Value)
		default:
			return "", fmt.Errorf("%w: unexpected %s inside code span", ErrMalformedTree, c.Kind())
		}
	}
	return b.String(), nil
}
