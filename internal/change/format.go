package change

import (
	"fmt"
	"strings"
)

// Format renders entries one per line as "SEVERITY ID Name subject: message".
// The output is stable and is used for golden comparisons and CLI output.
func (r *Report) Format() string {
	items := r.Items()
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	for i, e := range items {
		fmt.Fprintf(&b, "%s %s %s", e.Severity, e.Code.ID(), e.Code.Name())
		if subject := e.Subject(); subject != "" {
			fmt.Fprintf(&b, " %s", subject)
		}
		fmt.Fprintf(&b, ": %s", sanitizeMessage(e.Message))
		if i < len(items)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Summary renders code counts as "Name=N" in first-appearance order.
func (r *Report) Summary() string {
	counts := make(map[Code]int)
	order := make([]Code, 0, 4)
	for _, e := range r.Items() {
		if counts[e.Code] == 0 {
			order = append(order, e.Code)
		}
		counts[e.Code]++
	}
	parts := make([]string, 0, len(order))
	for _, code := range order {
		parts = append(parts, fmt.Sprintf("%s=%d", code.Name(), counts[code]))
	}
	return strings.Join(parts, " ")
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	return strings.ReplaceAll(msg, "\n", "\\n")
}
