package transform

import "strings"

// fences maps a matrix environment to its opening and closing glyphs.
var fences = map[string][2]string{
	"pmatrix": {"(", ")"},
	"bmatrix": {"[", "]"},
	"vmatrix": {"|", "|"},
	"matrix":  {"", ""},
}

const cellSeparator = "&nbsp;&nbsp;"

func environmentRules() []Rule {
	return []Rule{
		eval(`\\begin\{(pmatrix|bmatrix|vmatrix|matrix)\}([\s\S]*?)\\end\{\1\}`, renderMatrix),
		rule(`\\vdots`, `<span class="katex-matrix-dots">⋮</span>`),
		rule(`\\ddots`, `<span class="katex-matrix-dots">⋱</span>`),
		rule(`\\cdots`, `<span class="katex-matrix-dots">⋯</span>`),
		eval(`\\begin\{cases\}([\s\S]*?)\\end\{cases\}`, renderCases),
		rule(`&(?!`+entityRef+`)`, `&amp;`),
	}
}

func renderMatrix(groups []string) string {
	env, body := groups[1], groups[2]
	fence := fences[env]

	var b strings.Builder
	b.WriteString(`<span class="katex-matrix katex-`)
	b.WriteString(env)
	b.WriteString(`">`)
	b.WriteString(fence[0])
	for i, row := range splitRows(body) {
		if i > 0 {
			b.WriteString("<br>")
		}
		b.WriteString(strings.Join(splitCells(row, -1), cellSeparator))
	}
	b.WriteString(fence[1])
	b.WriteString(`</span>`)
	return b.String()
}

// renderCases splits each row on its first column separator into a value and
// a condition. Rows without a separator render as a single cell.
func renderCases(groups []string) string {
	var b strings.Builder
	b.WriteString(`<span class="katex-cases">`)
	for _, row := range splitRows(groups[1]) {
		cells := splitCells(row, 2)
		b.WriteString(`<span class="katex-case-row">`)
		if len(cells) == 2 {
			b.WriteString(`<span class="katex-case-value">`)
			b.WriteString(cells[0])
			b.WriteString(`</span><span class="katex-case-condition">`)
			b.WriteString(cells[1])
			b.WriteString(`</span>`)
		} else {
			b.WriteString(cells[0])
		}
		b.WriteString(`</span>`)
	}
	b.WriteString(`</span>`)
	return b.String()
}

// splitRows splits an environment body on \\ and drops blank rows.
func splitRows(body string) []string {
	parts := strings.Split(strings.TrimSpace(body), `\\`)
	rows := parts[:0]
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			rows = append(rows, part)
		}
	}
	return rows
}

// splitCells splits a row on column separators, at most limit cells when
// limit > 0. An ampersand that opens a character reference produced by an
// earlier stage is not a separator.
func splitCells(row string, limit int) []string {
	var cells []string
	start := 0
	for i := 0; i < len(row); i++ {
		if row[i] != '&' || isEntity(row[i:]) {
			continue
		}
		if limit > 0 && len(cells) == limit-1 {
			break
		}
		cells = append(cells, strings.TrimSpace(row[start:i]))
		start = i + 1
	}
	return append(cells, strings.TrimSpace(row[start:]))
}

// isEntity reports whether s starts with a named or numeric character
// reference such as &lt; or &#8230;.
func isEntity(s string) bool {
	i := 1
	if i < len(s) && s[i] == '#' {
		i++
	}
	begin := i
	for i < len(s) && i-begin < 32 {
		c := s[i]
		switch {
		case c == ';':
			return i > begin
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			i++
		default:
			return false
		}
	}
	return false
}
