package threshold

// Severity is the alert level of a probe outcome. The numeric value doubles
// as the plugin exit status.
type Severity int

const (
	OK Severity = iota
	Warning
	Critical
	Unknown
)

func (s Severity) String() string {
	switch s {
	case OK:
		return "OK"
	case Warning:
		return "WARNING"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ExitCode returns the monitoring-plugin exit status for s.
func (s Severity) ExitCode() int {
	if s < OK || s > Unknown {
		return int(Unknown)
	}
	return int(s)
}

// Worse returns the more severe of a and b.
func Worse(a, b Severity) Severity {
	if b > a {
		return b
	}
	return a
}
