package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goliatone/go-doctree"
)

const maxContentPreview = 60

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

// writeOutline prints one line per node, indented by depth.
func writeOutline(w io.Writer, tree *doctree.Tree) error {
	var werr error
	tree.Walk(func(node *doctree.TreeNode, depth int) bool {
		if werr != nil {
			return false
		}
		line := strings.Repeat("  ", depth) + node.Kind.String()
		if attrs := describeAttributes(node.Attributes); attrs != "" {
			line += " " + attrs
		}
		if node.Content != nil {
			line += " " + strconv.Quote(truncate(*node.Content))
		}
		_, werr = fmt.Fprintln(w, line)
		return true
	})
	return werr
}

func describeAttributes(a *doctree.Attributes) string {
	if a == nil {
		return ""
	}
	var parts []string
	add := func(key string, value any) {
		parts = append(parts, fmt.Sprintf("%s=%v", key, value))
	}
	if a.Level > 0 {
		add("level", a.Level)
	}
	if a.Ordered {
		add("ordered", true)
		add("start", a.Start)
	}
	if a.Tight {
		add("tight", true)
	}
	if a.BulletChar != "" {
		add("bullet", a.BulletChar)
	}
	if a.Checked != nil {
		add("checked", *a.Checked)
	}
	if a.URL != "" {
		add("url", a.URL)
	}
	if a.Title != "" {
		add("title", strconv.Quote(a.Title))
	}
	if a.Info != "" {
		add("info", a.Info)
	}
	if a.FrontMatter != "" {
		add("front_matter", len(a.FrontMatter))
	}
	return strings.Join(parts, " ")
}

func truncate(value string) string {
	runes := []rune(value)
	if len(runes) <= maxContentPreview {
		return value
	}
	return string(runes[:maxContentPreview]) + "..."
}
