package doctree

// Attributes is the structured payload attached to nodes whose kind carries
// extra data. It is persisted as a JSON object; absent keys decode to zero
// values, so a stored payload round-trips to an equal struct.
type Attributes struct {
	// Heading
	Level int `json:"level,omitempty"`

	// List
	Ordered    bool   `json:"ordered,omitempty"`
	Start      int    `json:"start,omitempty"`
	Tight      bool   `json:"tight,omitempty"`
	Delimiter  string `json:"delimiter,omitempty"`
	BulletChar string `json:"bullet_char,omitempty"`

	// Item (task lists)
	Checked *bool `json:"checked,omitempty"`

	// Link and Image
	URL      string `json:"url,omitempty"`
	Title    string `json:"title,omitempty"`
	Autolink bool   `json:"autolink,omitempty"`

	// CodeBlock
	Info   string `json:"info,omitempty"`
	Fenced bool   `json:"fenced,omitempty"`

	// Document
	FrontMatter string `json:"front_matter,omitempty"`
}

// Equal compares two attribute payloads, treating nil and the zero value as
// different (a nil payload means the kind has no attributes).
func (a *Attributes) Equal(other *Attributes) bool {
	if a == nil || other == nil {
		return a == nil && other == nil
	}
	if (a.Checked == nil) != (other.Checked == nil) {
		return false
	}
	if a.Checked != nil && *a.Checked != *other.Checked {
		return false
	}
	left, right := *a, *other
	left.Checked, right.Checked = nil, nil
	return left == right
}

func boolPtr(v bool) *bool {
	return &v
}
