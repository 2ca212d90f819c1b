package diagfmt

import (
	"strconv"
	"strings"

	"lumen/internal/diag"
)

// Message fills the template of d's code with its arguments. {N} refers to
// Args[N]; placeholders without an argument are kept as written.
func Message(d diag.Diagnostic) string {
	tpl := d.Code.Template()
	if !strings.Contains(tpl, "{") {
		return tpl
	}
	var sb strings.Builder
	for {
		open := strings.IndexByte(tpl, '{')
		if open < 0 {
			break
		}
		end := strings.IndexByte(tpl[open:], '}')
		if end < 0 {
			break
		}
		end += open
		n, err := strconv.Atoi(tpl[open+1 : end])
		sb.WriteString(tpl[:open])
		if err != nil || n < 0 || n >= len(d.Args) {
			sb.WriteString(tpl[open : end+1])
		} else {
			sb.WriteString(d.Args[n])
		}
		tpl = tpl[end+1:]
	}
	sb.WriteString(tpl)
	return sb.String()
}
