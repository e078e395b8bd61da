package interfaces

// ParseOptions customises how raw note text is parsed before it is flattened
// into a document tree. Option names stay simple so they can be populated from
// configuration files and CLI flags.
type ParseOptions struct {
	// Extensions lists goldmark extensions by name ("gfm", "strikethrough",
	// "tasklist", "linkify", "table"). Empty selects the GFM defaults.
	Extensions []string
	// FrontMatter strips a leading YAML front matter block before parsing and
	// records it on the document root.
	FrontMatter bool
}
