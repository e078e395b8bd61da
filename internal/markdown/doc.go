// Package markdown is the parse adapter in front of the document tree engine.
// It turns raw note text into an ephemeral goldmark AST (optionally after
// splitting off YAML front matter) and discovers note files on disk for bulk
// rebuilds.
package markdown
