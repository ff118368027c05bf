package dateparser

import (
	"fmt"
	"strconv"
)

// Outcome is the result of trying one pattern against a name.
type Outcome int

const (
	// NoMatch means the pattern did not occur in the name.
	NoMatch Outcome = iota
	// Rejected means the pattern occurred but the month, calendar or year check failed.
	Rejected
	// Matched means the pattern produced a valid date for the expected year.
	Matched
)

func (o Outcome) String() string {
	switch o {
	case NoMatch:
		return "no match"
	case Rejected:
		return "rejected"
	case Matched:
		return "matched"
	default:
		return "unknown"
	}
}

// Attempt records how one pattern fared against a name.
type Attempt struct {
	Pattern string
	Outcome Outcome
	Text    string // matched substring, empty on NoMatch
	Date    Date   // valid only when Outcome is Matched
	Reason  string // why a structural match was rejected
}

// Resolver applies a PatternSet to file names.
type Resolver struct {
	set *PatternSet
}

// NewResolver returns a resolver over set. A nil set uses the default patterns.
func NewResolver(set *PatternSet) *Resolver {
	if set == nil {
		set = DefaultPatternSet()
	}
	return &Resolver{set: set}
}

// Patterns returns the set the resolver applies.
func (r *Resolver) Patterns() *PatternSet {
	return r.set
}

// Resolve returns the first date, in pattern priority order, that both forms
// a real calendar date and falls in year. A pattern that matches but fails
// validation does not stop the search.
func (r *Resolver) Resolve(name string, year int) (Date, bool) {
	for _, p := range r.set.patterns {
		if a := p.attempt(name, year); a.Outcome == Matched {
			return a.Date, true
		}
	}
	return Date{}, false
}

// Explain tries every pattern and reports each outcome, stopping after the
// first match as Resolve would.
func (r *Resolver) Explain(name string, year int) []Attempt {
	attempts := make([]Attempt, 0, len(r.set.patterns))
	for _, p := range r.set.patterns {
		a := p.attempt(name, year)
		attempts = append(attempts, a)
		if a.Outcome == Matched {
			break
		}
	}
	return attempts
}

func (p *Pattern) attempt(name string, year int) Attempt {
	a := Attempt{Pattern: p.Name}

	m := p.Expr.FindStringSubmatch(name)
	if m == nil {
		return a
	}
	a.Text = m[0]
	a.Outcome = Rejected

	y, err := strconv.Atoi(m[p.year])
	if err != nil {
		a.Reason = fmt.Sprintf("year %q is not numeric", m[p.year])
		return a
	}
	d, err := strconv.Atoi(m[p.day])
	if err != nil {
		a.Reason = fmt.Sprintf("day %q is not numeric", m[p.day])
		return a
	}
	mon, ok := MonthNumber(m[p.month])
	if !ok {
		a.Reason = fmt.Sprintf("month %q is not a month", m[p.month])
		return a
	}

	date, reason := NewDate(y, mon, d)
	if reason != "" {
		a.Reason = reason
		return a
	}
	if date.Year != year {
		a.Reason = fmt.Sprintf("year %04d does not match %04d", date.Year, year)
		return a
	}

	a.Outcome = Matched
	a.Date = date
	return a
}
