// Package markdown renders Markdown pages with embedded math. Front matter is
// parsed with adrg/frontmatter, bodies are converted with goldmark plus a math
// passthrough extension, and the resulting HTML is handed to the region
// scanner so `$…$` and `$$…$$` regions become rendered wrappers.
package markdown
