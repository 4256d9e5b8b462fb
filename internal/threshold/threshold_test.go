package threshold

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var utilMetrics = []string{"in_util", "out_util"}

func mustParse(t *testing.T, expr string) Expression {
	t.Helper()
	e, errs := Parse(expr, utilMetrics)
	require.Empty(t, errs, "Parse(%q)", expr)
	return e
}

func TestParseOrGroups(t *testing.T) {
	e, errs := Parse("in_util,gt,90:out_util,gt,90", utilMetrics)
	require.Empty(t, errs)
	require.Len(t, e, 2)
	assert.Equal(t, Predicate{Metric: "in_util", Op: GT, Bound: 90}, e[0])
	assert.Equal(t, Predicate{Metric: "out_util", Op: GT, Bound: 90}, e[1])
	assert.Equal(t, "in_util,gt,90:out_util,gt,90", e.String())
}

func TestParseUnknownMetric(t *testing.T) {
	e, errs := Parse("bogus,gt,90", utilMetrics)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrUnknownMetric)
	assert.Empty(t, e)

	var pe *ParseError
	require.True(t, errors.As(errs[0], &pe))
	assert.Equal(t, "bogus", pe.Token)
}

func TestParseCollectsAllErrors(t *testing.T) {
	_, errs := Parse("bogus,eq,abc:in_util,lt", utilMetrics)
	require.Len(t, errs, 4)
	assert.ErrorIs(t, errs[0], ErrUnknownMetric)
	assert.ErrorIs(t, errs[1], ErrUnknownOperator)
	assert.ErrorIs(t, errs[2], ErrInvalidBound)
	assert.ErrorIs(t, errs[3], ErrMalformedPredicate)
}

func TestParseKeepsCleanGroups(t *testing.T) {
	e, errs := Parse("in_util,GTE,80.5:out_util,xx,1", utilMetrics)
	require.Len(t, errs, 1)
	require.Len(t, e, 1)
	assert.Equal(t, Predicate{Metric: "in_util", Op: GTE, Bound: 80.5}, e[0])
}

func TestParseEmpty(t *testing.T) {
	_, errs := Parse("  ", utilMetrics)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrMalformedPredicate)
}

func TestParseRejectsNaN(t *testing.T) {
	_, errs := Parse("in_util,gt,NaN", utilMetrics)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrInvalidBound)
}

func TestOperatorCompare(t *testing.T) {
	assert.True(t, LT.Compare(1, 2))
	assert.False(t, LT.Compare(2, 2))
	assert.True(t, LTE.Compare(2, 2))
	assert.True(t, GT.Compare(3, 2))
	assert.False(t, GT.Compare(2, 2))
	assert.True(t, GTE.Compare(2, 2))
	assert.False(t, Operator("eq").Compare(2, 2))
}

func TestEvaluateWarning(t *testing.T) {
	values := Values{"in_util": 93, "out_util": 85}
	warn := mustParse(t, "in_util,gt,90:out_util,gt,90")
	crit := mustParse(t, "out_util,gt,95")

	r := Evaluate(values, warn, crit, utilMetrics)
	assert.Equal(t, Warning, r.Severity)
	require.Len(t, r.Metrics, 2)
	assert.Equal(t, Warning, r.Metrics[0].Status)
	assert.Equal(t, OK, r.Metrics[1].Status)
	assert.Equal(t, "in_util 93.00% WARNING (in_util,gt,90), out_util 85.00% OK", r.Phrases())
}

func TestEvaluateCriticalWins(t *testing.T) {
	values := Values{"in_util": 97, "out_util": 10}
	warn := mustParse(t, "in_util,gt,90")
	crit := mustParse(t, "in_util,gt,95")

	r := Evaluate(values, warn, crit, utilMetrics)
	assert.Equal(t, Critical, r.Severity)
	m := r.Metrics[0]
	assert.Equal(t, Critical, m.Status)
	assert.Len(t, m.CriticalMatches, 1)
	assert.Len(t, m.WarningMatches, 1, "warning predicates are still computed")
	assert.Equal(t, "in_util 97.00% CRITICAL (in_util,gt,95)", m.Phrase())
}

func TestEvaluateAcrossMetrics(t *testing.T) {
	values := Values{"in_util": 91, "out_util": 99}
	warn := mustParse(t, "in_util,gt,90")
	crit := mustParse(t, "out_util,gte,99")

	r := Evaluate(values, warn, crit, utilMetrics)
	assert.Equal(t, Critical, r.Severity)
	assert.Equal(t, Warning, r.Metrics[0].Status)
	assert.Equal(t, Critical, r.Metrics[1].Status)
}

func TestEvaluateOK(t *testing.T) {
	values := Values{"in_util": 1, "out_util": 2}
	r := Evaluate(values, mustParse(t, "in_util,gt,90"), mustParse(t, "in_util,gt,95"), nil)
	assert.Equal(t, OK, r.Severity)
	assert.Equal(t, []string{"in_util", "out_util"}, []string{r.Metrics[0].Name, r.Metrics[1].Name})
}

func TestEvaluateDeterministic(t *testing.T) {
	values := Values{"in_util": 93, "out_util": 85}
	warn := mustParse(t, "in_util,gt,90:out_util,gt,90")
	crit := mustParse(t, "out_util,gt,95")

	first := Evaluate(values, warn, crit, utilMetrics)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Evaluate(values, warn, crit, utilMetrics))
	}
}

func TestPerfData(t *testing.T) {
	values := Values{"in_util": 93, "out_util": 8}
	warn := mustParse(t, "in_util,gt,90:out_util,gt,90")
	crit := mustParse(t, "out_util,gt,95")

	r := Evaluate(values, warn, crit, utilMetrics)
	assert.Equal(t,
		"'in_util'=93.00%;90;;0;100 'out_util'=8.00%;90;95;0;100",
		r.PerfData(0, 100))
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, Critical, Worse(Warning, Critical))
	assert.Equal(t, Critical, Worse(Critical, Warning))
	assert.Equal(t, Warning, Worse(OK, Warning))
	assert.Equal(t, 0, OK.ExitCode())
	assert.Equal(t, 1, Warning.ExitCode())
	assert.Equal(t, 2, Critical.ExitCode())
	assert.Equal(t, 3, Unknown.ExitCode())
	assert.Equal(t, "WARNING", Warning.String())
}
