package dateparser

import (
	"fmt"
	"regexp"
	"strings"
)

// Pattern names, in default priority order.
const (
	PatternCompact        = "yyyymmdd"
	PatternISO            = "yyyy-mm-dd"
	PatternDayFirst       = "dd-mm-yyyy"
	PatternMonthFirst     = "mm-dd-yyyy"
	PatternCompactAbbr    = "yyyymondd"
	PatternSeparatedAbbr  = "yyyy-mon-dd"
	PatternCompactFull    = "yyyymonthdd"
	PatternSeparatedFull  = "yyyy-month-dd"
	groupYear             = "Y"
	groupDay              = "D"
	groupMonthNumeric     = "M"
	groupMonthAbbreviated = "Ma"
	groupMonthFull        = "Mf"
)

var (
	abbrAlternation = "(?P<Ma>" + strings.Join(monthAbbr[:], "|") + ")"
	fullAlternation = "(?P<Mf>" + strings.Join(monthFull[:], "|") + ")"
)

// defaultExprs lists the built-in expressions. Separators are '-' and '_'.
var defaultExprs = []struct {
	name string
	expr string
}{
	{PatternCompact, `(?P<Y>\d{4})(?P<M>\d{2})(?P<D>\d{2})`},
	{PatternISO, `(?P<Y>\d{4})[-_](?P<M>\d{2})[-_](?P<D>\d{2})`},
	{PatternDayFirst, `(?P<D>\d{2})[-_](?P<M>\d{2})[-_](?P<Y>\d{4})`},
	{PatternMonthFirst, `(?P<M>\d{2})[-_](?P<D>\d{2})[-_](?P<Y>\d{4})`},
	{PatternCompactAbbr, `(?P<Y>\d{4})` + abbrAlternation + `(?P<D>\d{2})`},
	{PatternSeparatedAbbr, `(?P<Y>\d{4})[-_]` + abbrAlternation + `[-_](?P<D>\d{2})`},
	{PatternCompactFull, `(?P<Y>\d{4})` + fullAlternation + `(?P<D>\d{2})`},
	{PatternSeparatedFull, `(?P<Y>\d{4})[-_]` + fullAlternation + `[-_](?P<D>\d{2})`},
}

// Pattern is a compiled date expression with named capture groups.
type Pattern struct {
	Name string
	Expr *regexp.Regexp

	year, day, month int // submatch indexes; month is whichever form the pattern uses
}

// NewPattern compiles expr case-insensitively. The expression must capture a
// year (Y) and a day (D), and exactly one of M, Ma or Mf for the month.
func NewPattern(name, expr string) (*Pattern, error) {
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return nil, fmt.Errorf("pattern %s: %w", name, err)
	}

	p := &Pattern{Name: name, Expr: re, year: -1, day: -1, month: -1}
	months := 0
	for i, g := range re.SubexpNames() {
		switch g {
		case groupYear:
			p.year = i
		case groupDay:
			p.day = i
		case groupMonthNumeric, groupMonthAbbreviated, groupMonthFull:
			p.month = i
			months++
		}
	}
	if p.year < 0 || p.day < 0 {
		return nil, fmt.Errorf("pattern %s: year and day groups are required", name)
	}
	if months != 1 {
		return nil, fmt.Errorf("pattern %s: exactly one month group is required, found %d", name, months)
	}
	return p, nil
}

// PatternSet is an ordered, read-only list of patterns. Build it once and
// share it; nothing mutates it after construction.
type PatternSet struct {
	patterns []*Pattern
}

var builtins = compileBuiltins()

func compileBuiltins() map[string]*Pattern {
	m := make(map[string]*Pattern, len(defaultExprs))
	for _, d := range defaultExprs {
		p, err := NewPattern(d.name, d.expr)
		if err != nil {
			panic(err)
		}
		m[d.name] = p
	}
	return m
}

// DefaultPatternNames returns the built-in pattern names in priority order.
func DefaultPatternNames() []string {
	names := make([]string, len(defaultExprs))
	for i, d := range defaultExprs {
		names[i] = d.name
	}
	return names
}

// DefaultPatternSet returns the built-in patterns in their default priority.
func DefaultPatternSet() *PatternSet {
	set, _ := NewPatternSet(nil)
	return set
}

// NewPatternSet builds a set from built-in pattern names in the given order.
// An empty order yields the default priority. Callers use this to try
// MM-DD-YYYY before DD-MM-YYYY for locales that write dates that way.
func NewPatternSet(order []string) (*PatternSet, error) {
	if len(order) == 0 {
		order = DefaultPatternNames()
	}
	seen := make(map[string]bool, len(order))
	set := &PatternSet{patterns: make([]*Pattern, 0, len(order))}
	for _, name := range order {
		key := strings.ToLower(strings.TrimSpace(name))
		p, ok := builtins[key]
		if !ok {
			return nil, fmt.Errorf("unknown date pattern %q", name)
		}
		if seen[key] {
			return nil, fmt.Errorf("date pattern %q listed twice", name)
		}
		seen[key] = true
		set.patterns = append(set.patterns, p)
	}
	return set, nil
}

// Names returns the pattern names in priority order.
func (s *PatternSet) Names() []string {
	names := make([]string, len(s.patterns))
	for i, p := range s.patterns {
		names[i] = p.Name
	}
	return names
}

// Len returns the number of patterns in the set.
func (s *PatternSet) Len() int {
	return len(s.patterns)
}
