package probe

import (
	"strings"

	"github.com/tonhe/flocheck/internal/threshold"
)

// ShortName prefixes every output line.
const ShortName = "IFUTIL"

// Percentage metrics are reported against a fixed 0..100 range.
const (
	perfMin = 0
	perfMax = 100
)

// Result is the verdict of one run.
type Result struct {
	Severity threshold.Severity
	Label    string
	Message  string
	// Report is nil when the run ended before sampling.
	Report *threshold.Report
}

// String renders the single plugin output line, e.g.
//
//	IFUTIL WARNING - Gi0/1 (full duplex): in_util 93.00% WARNING (in_util,gt,90), out_util 85.00% OK | 'in_util'=93.00%;90;;0;100 'out_util'=85.00%;90;95;0;100
func (r *Result) String() string {
	var sb strings.Builder
	sb.WriteString(ShortName)
	sb.WriteByte(' ')
	sb.WriteString(r.Severity.String())
	sb.WriteString(" - ")
	if r.Label != "" {
		sb.WriteString(r.Label)
		sb.WriteString(": ")
	}
	sb.WriteString(r.Message)
	if r.Report != nil && len(r.Report.Metrics) > 0 {
		sb.WriteString(" | ")
		sb.WriteString(r.Report.PerfData(perfMin, perfMax))
	}
	return oneLine(sb.String())
}

// ExitCode returns the plugin exit status for the verdict.
func (r *Result) ExitCode() int {
	return r.Severity.ExitCode()
}

// ErrorLine renders a fatal error as an UNKNOWN output line.
func ErrorLine(err error) string {
	return oneLine(ShortName + " " + threshold.Unknown.String() + " - " + err.Error())
}

// ExitCode maps a run outcome to the plugin exit status.
func ExitCode(res *Result, err error) int {
	if err != nil || res == nil {
		return threshold.Unknown.ExitCode()
	}
	return res.ExitCode()
}

func oneLine(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "; ")
}
