/*
Package suggest is the core of the search bar: it turns a partial query into
a small ranked list of completions drawn from the user's own history, the
course-code prefix catalog, and the department alias tables.

Precedence is history over course prefixes over departments: a query the
user has already searched is a better bet than anything guessed from static
tables. Candidates are deduplicated case-insensitively with the higher
precedence source winning, sorted by confidence, and capped.
*/
package suggest

import (
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/uninav/navcore/internal/utils"
	"github.com/uninav/navcore/pkg/dictionary"
)

// MaxSuggestions caps the ranked list handed to the UI.
const MaxSuggestions = 5

// Source labels where a candidate came from.
type Source string

const (
	SourceHistory    Source = "history"
	SourceCourse     Source = "course"
	SourceDepartment Source = "department"
)

// Confidence levels per source tier.
const (
	confHistory       = 0.9
	confCoursePrefix  = 0.8
	confCourseNumeric = 0.7
	confDeptExact     = 0.75
	confDeptPrefix    = 0.6
	confDeptSubstring = 0.5
)

// Candidate is one ranked completion. Recomputed per keystroke, never stored.
type Candidate struct {
	Text       string
	Source     Source
	Confidence float64
}

// Options controls a suggestion request.
type Options struct {
	Enabled       bool
	MinCharacters int

	// MaxResults tightens the cap below MaxSuggestions when positive.
	MaxResults int
}

// Engine merges the three suggestion sources.
type Engine struct {
	history  *HistoryStore
	prefixes *dictionary.PrefixTable
	aliases  *dictionary.AliasTable
	defaults Options
}

// NewEngine wires an engine over the given history store and static tables.
func NewEngine(history *HistoryStore, prefixes *dictionary.PrefixTable, aliases *dictionary.AliasTable, defaults Options) *Engine {
	return &Engine{
		history:  history,
		prefixes: prefixes,
		aliases:  aliases,
		defaults: defaults,
	}
}

// Suggestions computes the ranked candidate list for a partial query.
func (e *Engine) Suggestions(query string, opts Options) []Candidate {
	norm := strings.TrimSpace(query)
	if !opts.Enabled || len(norm) < opts.MinCharacters || norm == "" {
		return nil
	}

	// Sources append in priority order; the dedupe filter makes the first
	// (highest-precedence) occurrence win.
	var candidates []Candidate

	historyMatches := e.history.MatchPrefix(norm, 3)
	for _, m := range historyMatches {
		candidates = append(candidates, Candidate{Text: m, Source: SourceHistory, Confidence: confHistory})
	}

	candidates = append(candidates, e.courseCandidates(norm)...)
	candidates = append(candidates, e.departmentCandidates(norm, len(historyMatches) > 0)...)

	filter := utils.NewSeenFilter("")
	ranked := candidates[:0]
	for _, c := range candidates {
		if filter.ShouldInclude(c.Text) {
			ranked = append(ranked, c)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})
	limit := MaxSuggestions
	if opts.MaxResults > 0 && opts.MaxResults < limit {
		limit = opts.MaxResults
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	log.Debugf("%d suggestions for %q", len(ranked), norm)
	return ranked
}

// TabCompletion returns the single best candidate's text, but only when it
// forward-completes what the user typed; it never rewrites their input.
func (e *Engine) TabCompletion(query string) (string, bool) {
	candidates := e.Suggestions(query, e.defaults)
	if len(candidates) == 0 {
		return "", false
	}
	best := candidates[0].Text
	if !utils.HasPrefixFold(best, strings.TrimSpace(query)) {
		return "", false
	}
	return best, true
}

// SaveToHistory records a submitted search for future suggestions.
func (e *Engine) SaveToHistory(text string) {
	e.history.Save(text)
}

// ClearHistory wipes the persisted search history.
func (e *Engine) ClearHistory() {
	e.history.Clear()
}

// History returns the saved searches, most recent first.
func (e *Engine) History() []string {
	return e.history.Entries()
}

// courseCandidates fires when the uppercased query starts with a known
// course-code prefix. Longest-prefix matching keeps "EC" from shadowing
// "ECE". An exact prefix yields its departments; a prefix plus up to three
// trailing digits yields one numeric course-code completion.
func (e *Engine) courseCandidates(norm string) []Candidate {
	upper := strings.ToUpper(norm)
	prefix, depts, ok := e.prefixes.MatchLongest(upper)
	if !ok {
		return nil
	}

	if upper == prefix {
		out := make([]Candidate, 0, len(depts))
		for _, d := range depts {
			out = append(out, Candidate{Text: d, Source: SourceCourse, Confidence: confCoursePrefix})
		}
		return out
	}

	rest := upper[len(prefix):]
	if len(rest) > 3 || !utils.IsOnlyDigits(rest) {
		return nil
	}
	return []Candidate{{
		Text:       prefix + completeCourseNumber(rest),
		Source:     SourceCourse,
		Confidence: confCourseNumeric,
	}}
}

// completeCourseNumber pads typed digits out to a standard three-digit
// course number: "" -> "101", "2" -> "201", "20" -> "201".
func completeCourseNumber(digits string) string {
	const pattern = "101"
	if len(digits) >= len(pattern) {
		return digits
	}
	return digits + pattern[len(digits):]
}

// departmentCandidates resolves free text against canonical names and alias
// lists. The exact tier is suppressed while history already has answers;
// the weak substring tier is not.
func (e *Engine) departmentCandidates(norm string, haveHistory bool) []Candidate {
	if canonical, ok := e.aliases.Match(norm); ok {
		if haveHistory {
			return nil
		}
		out := []Candidate{{Text: canonical, Source: SourceDepartment, Confidence: confDeptExact}}
		prefixes := e.prefixes.PrefixesFor(canonical)
		if len(prefixes) > 2 {
			prefixes = prefixes[:2]
		}
		for _, p := range prefixes {
			out = append(out, Candidate{Text: p, Source: SourceCourse, Confidence: confDeptPrefix})
		}
		return out
	}

	if canonical, ok := e.aliases.MatchSubstring(norm); ok {
		return []Candidate{{Text: canonical, Source: SourceDepartment, Confidence: confDeptSubstring}}
	}
	return nil
}
