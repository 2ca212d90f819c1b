package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevWarning marks a finding that does not make the program invalid.
	SevWarning Severity = iota + 1
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}
