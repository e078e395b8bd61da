package markdown

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// SplitFrontMatter removes a leading YAML front matter block from source. It
// returns the header re-encoded as canonical YAML (sorted keys) and the
// remaining markdown body. Sources without front matter come back unchanged
// with an empty header.
func SplitFrontMatter(source []byte) (string, []byte, error) {
	var meta map[string]any

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return "", nil, fmt.Errorf("parse front matter: %w", err)
	}
	if len(meta) == 0 {
		return "", body, nil
	}

	encoded, err := yaml.Marshal(meta)
	if err != nil {
		return "", nil, fmt.Errorf("encode front matter: %w", err)
	}
	return string(encoded), body, nil
}
