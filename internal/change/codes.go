package change

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// reconciliation
	MissingCell       Code = 1001
	UnmatchedFunction Code = 1002
	DuplicateTag      Code = 1003
	Relabeled         Code = 1004

	// storage and collaborators
	ReadFailure    Code = 2001
	WriteFailure   Code = 2002
	StageFailure   Code = 2003
	ExecuteFailure Code = 2004
	ApplyFailure   Code = 2005
)

var codeDescription = map[Code]string{
	UnknownCode:       "Unknown",
	MissingCell:       "Template cell missing from submission",
	UnmatchedFunction: "No submission cell declares the template's functions",
	DuplicateTag:      "Duplicate grade_id merged",
	Relabeled:         "Grading metadata restored by function name",
	ReadFailure:       "Document could not be read",
	WriteFailure:      "Document could not be written",
	StageFailure:      "Merged document could not be staged",
	ExecuteFailure:    "Staged document failed to execute",
	ApplyFailure:      "Operation could not rewrite the document",
}

// defaultSeverity is the severity an entry gets unless the producer
// overrides it.
var defaultSeverity = map[Code]Severity{
	MissingCell:       SevWarning,
	UnmatchedFunction: SevWarning,
	DuplicateTag:      SevWarning,
	Relabeled:         SevInfo,
	ReadFailure:       SevError,
	WriteFailure:      SevError,
	StageFailure:      SevError,
	ExecuteFailure:    SevError,
	ApplyFailure:      SevError,
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("REC%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

// Name is the short identifier used in CSV output and logs.
func (c Code) Name() string {
	switch c {
	case MissingCell:
		return "MissingCell"
	case UnmatchedFunction:
		return "UnmatchedFunction"
	case DuplicateTag:
		return "DuplicateTag"
	case Relabeled:
		return "Relabeled"
	case ReadFailure:
		return "DocumentReadFailure"
	case WriteFailure:
		return "DocumentWriteFailure"
	case StageFailure:
		return "StageFailure"
	case ExecuteFailure:
		return "ExecuteFailure"
	case ApplyFailure:
		return "ApplyFailure"
	}
	return "Unknown"
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// DefaultSeverity returns the severity used by Report constructors.
func (c Code) DefaultSeverity() Severity {
	if sev, ok := defaultSeverity[c]; ok {
		return sev
	}
	return SevError
}
