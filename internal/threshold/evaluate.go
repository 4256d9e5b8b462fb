package threshold

import (
	"fmt"
	"strconv"
	"strings"
)

// MetricResult is the evaluation outcome for one tracked metric.
type MetricResult struct {
	Name   string
	Value  float64
	Status Severity

	// Matched predicates per level. Warning matches are computed even when a
	// critical predicate already fired.
	CriticalMatches []Predicate
	WarningMatches  []Predicate

	// First configured bound for this metric at each level, if any.
	WarnBound *float64
	CritBound *float64
}

// Phrase renders a short human-readable status, e.g.
// "in_util 93.00% WARNING (in_util,gt,90)".
func (m MetricResult) Phrase() string {
	base := fmt.Sprintf("%s %.2f%%", m.Name, m.Value)
	switch m.Status {
	case Critical:
		return fmt.Sprintf("%s CRITICAL (%s)", base, joinPredicates(m.CriticalMatches))
	case Warning:
		return fmt.Sprintf("%s WARNING (%s)", base, joinPredicates(m.WarningMatches))
	default:
		return base + " OK"
	}
}

// PerfData renders the metric as 'name'=value%;warn;crit;min;max.
func (m MetricResult) PerfData(min, max float64) string {
	return fmt.Sprintf("'%s'=%.2f%%;%s;%s;%s;%s",
		m.Name, m.Value,
		optionalBound(m.WarnBound), optionalBound(m.CritBound),
		formatBound(min), formatBound(max))
}

// Report is the overall evaluation of a set of metrics.
type Report struct {
	Severity Severity
	Metrics  []MetricResult
}

// Phrases joins the per-metric phrases of every tracked metric.
func (r *Report) Phrases() string {
	parts := make([]string, len(r.Metrics))
	for i, m := range r.Metrics {
		parts[i] = m.Phrase()
	}
	return strings.Join(parts, ", ")
}

// PerfData renders performance data for every tracked metric, using min and
// max as the implicit range.
func (r *Report) PerfData(min, max float64) string {
	parts := make([]string, len(r.Metrics))
	for i, m := range r.Metrics {
		parts[i] = m.PerfData(min, max)
	}
	return strings.Join(parts, " ")
}

// Evaluate checks values against the warning and critical expressions. The
// metrics slice fixes which metrics are reported and in which order; when nil,
// every metric in values is reported in name order.
func Evaluate(values Values, warn, crit Expression, metrics []string) *Report {
	if metrics == nil {
		metrics = values.Names()
	}

	report := &Report{Severity: OK}
	for _, name := range metrics {
		result := MetricResult{
			Name:   name,
			Value:  values[name],
			Status: OK,
		}

		critPreds := crit.ForMetric(name)
		warnPreds := warn.ForMetric(name)
		if len(critPreds) > 0 {
			result.CritBound = &critPreds[0].Bound
		}
		if len(warnPreds) > 0 {
			result.WarnBound = &warnPreds[0].Bound
		}

		for _, p := range critPreds {
			if p.Matches(values) {
				result.CriticalMatches = append(result.CriticalMatches, p)
			}
		}
		for _, p := range warnPreds {
			if p.Matches(values) {
				result.WarningMatches = append(result.WarningMatches, p)
			}
		}

		switch {
		case len(result.CriticalMatches) > 0:
			result.Status = Critical
		case len(result.WarningMatches) > 0:
			result.Status = Warning
		}

		report.Severity = Worse(report.Severity, result.Status)
		report.Metrics = append(report.Metrics, result)
	}
	return report
}

func joinPredicates(preds []Predicate) string {
	parts := make([]string, len(preds))
	for i, p := range preds {
		parts[i] = p.String()
	}
	return strings.Join(parts, " or ")
}

func optionalBound(b *float64) string {
	if b == nil {
		return ""
	}
	return strconv.FormatFloat(*b, 'f', -1, 64)
}
