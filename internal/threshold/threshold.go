// Package threshold parses and evaluates compact multi-metric threshold
// expressions of the form "metric,op,bound[:metric,op,bound...]".
//
// Groups separated by ':' are combined with logical OR. One expression is
// configured per severity level (warning and critical).
package threshold

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

const (
	groupSep = ":"
	fieldSep = ","
)

var (
	ErrUnknownMetric      = errors.New("unknown metric")
	ErrUnknownOperator    = errors.New("unknown operator")
	ErrInvalidBound       = errors.New("invalid bound")
	ErrMalformedPredicate = errors.New("malformed predicate, expected metric,op,bound")
)

// Operator is a comparison between a sampled value and a bound.
type Operator string

const (
	LT  Operator = "lt"
	LTE Operator = "lte"
	GT  Operator = "gt"
	GTE Operator = "gte"
)

var operators = map[string]Operator{
	"lt":  LT,
	"lte": LTE,
	"gt":  GT,
	"gte": GTE,
}

// Compare reports whether value satisfies the operator against bound.
func (o Operator) Compare(value, bound float64) bool {
	switch o {
	case LT:
		return value < bound
	case LTE:
		return value <= bound
	case GT:
		return value > bound
	case GTE:
		return value >= bound
	default:
		return false
	}
}

// Predicate is a single metric,op,bound group.
type Predicate struct {
	Metric string
	Op     Operator
	Bound  float64
}

func (p Predicate) String() string {
	return p.Metric + fieldSep + string(p.Op) + fieldSep + formatBound(p.Bound)
}

// Matches reports whether the predicate holds for the given values. A metric
// missing from values never matches.
func (p Predicate) Matches(values Values) bool {
	v, ok := values[p.Metric]
	if !ok {
		return false
	}
	return p.Op.Compare(v, p.Bound)
}

// Expression is an ordered, OR-combined set of predicates.
type Expression []Predicate

// ForMetric returns the predicates that test the named metric, in order.
func (e Expression) ForMetric(metric string) []Predicate {
	var out []Predicate
	for _, p := range e {
		if p.Metric == metric {
			out = append(out, p)
		}
	}
	return out
}

func (e Expression) String() string {
	parts := make([]string, len(e))
	for i, p := range e {
		parts[i] = p.String()
	}
	return strings.Join(parts, groupSep)
}

// Values maps metric names to sampled values.
type Values map[string]float64

// Names returns the metric names in sorted order.
func (v Values) Names() []string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseError describes one faulty token within a predicate group.
type ParseError struct {
	Group string
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("%v in %q", e.Err, e.Group)
	}
	return fmt.Sprintf("%v %q in %q", e.Err, e.Token, e.Group)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse parses expr against the set of known metric names. Every fault in
// every group is reported; the returned expression holds only the groups that
// parsed cleanly. Callers must treat a non-empty error list as fatal.
func Parse(expr string, known []string) (Expression, []error) {
	if strings.TrimSpace(expr) == "" {
		return nil, []error{&ParseError{Group: expr, Err: ErrMalformedPredicate}}
	}

	knownSet := make(map[string]bool, len(known))
	for _, k := range known {
		knownSet[k] = true
	}

	var (
		expression Expression
		errs       []error
	)
	for _, group := range strings.Split(expr, groupSep) {
		fields := strings.Split(group, fieldSep)
		if len(fields) != 3 {
			errs = append(errs, &ParseError{Group: group, Err: ErrMalformedPredicate})
			continue
		}

		metric := strings.TrimSpace(fields[0])
		opToken := strings.TrimSpace(fields[1])
		boundToken := strings.TrimSpace(fields[2])
		clean := true

		if !knownSet[metric] {
			errs = append(errs, &ParseError{Group: group, Token: metric, Err: ErrUnknownMetric})
			clean = false
		}

		op, ok := operators[strings.ToLower(opToken)]
		if !ok {
			errs = append(errs, &ParseError{Group: group, Token: opToken, Err: ErrUnknownOperator})
			clean = false
		}

		bound, err := strconv.ParseFloat(boundToken, 64)
		if err != nil || math.IsNaN(bound) || math.IsInf(bound, 0) {
			errs = append(errs, &ParseError{Group: group, Token: boundToken, Err: ErrInvalidBound})
			clean = false
		}

		if clean {
			expression = append(expression, Predicate{Metric: metric, Op: op, Bound: bound})
		}
	}
	return expression, errs
}

func formatBound(b float64) string {
	return strconv.FormatFloat(b, 'f', -1, 64)
}
