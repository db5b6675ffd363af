package change

import "strings"

// Entry is one recorded event of a reconciliation.
type Entry struct {
	Code     Code
	Severity Severity
	Tag      string
	Names    []string
	Message  string
}

// Subject returns the tag, or the joined names when there is no tag.
func (e Entry) Subject() string {
	if e.Tag != "" {
		return e.Tag
	}
	return strings.Join(e.Names, ",")
}
