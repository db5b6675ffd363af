package change

// Severity defines the importance of an entry.
type Severity uint8

const (
	// SevInfo is for changes that were applied as expected.
	SevInfo Severity = iota
	// SevWarning is for drift that was detected, repaired or not.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}
