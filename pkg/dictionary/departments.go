package dictionary

import (
	"strings"

	"github.com/uninav/navcore/internal/utils"
)

// AliasEntry maps a canonical department name to the abbreviations and
// alternate spellings students actually type.
type AliasEntry struct {
	Canonical string
	Aliases   []string
}

var departmentAliases = []AliasEntry{
	{"Accounting", []string{"acct", "accounts"}},
	{"Architecture", []string{"arch"}},
	{"Biochemistry", []string{"biochem", "bch"}},
	{"Biological Sciences", []string{"biology", "bio sci", "biosciences"}},
	{"Business Administration", []string{"bus admin", "business admin", "busad"}},
	{"Chemical Engineering", []string{"chem eng", "cheme"}},
	{"Chemistry", []string{"chem"}},
	{"Civil Engineering", []string{"civil", "civil eng"}},
	{"Computer Science", []string{"comp sci", "compsci", "csc", "cs", "computing"}},
	{"Economics", []string{"econs", "econ"}},
	{"Electrical and Computer Engineering", []string{"ece", "comp eng", "computer engineering"}},
	{"Electrical and Electronics Engineering", []string{"eee", "elect eng", "electrical"}},
	{"English and Literary Studies", []string{"english", "eng lit"}},
	{"Finance", []string{"fin"}},
	{"General Studies", []string{"gst", "gens"}},
	{"Geography", []string{"geog"}},
	{"Geology", []string{"geol", "earth science"}},
	{"History and International Studies", []string{"history", "intl studies"}},
	{"Law", []string{"llb"}},
	{"Marketing", []string{"mkt"}},
	{"Mathematics", []string{"maths", "math", "mth"}},
	{"Mechanical Engineering", []string{"mech", "mech eng"}},
	{"Microbiology", []string{"micro", "mcb"}},
	{"Philosophy", []string{"phil"}},
	{"Physics", []string{"phy"}},
	{"Political Science", []string{"pol sci", "polsci", "politics"}},
	{"Psychology", []string{"psych"}},
	{"Sociology", []string{"soc"}},
	{"Statistics", []string{"stats", "sta"}},
	{"Zoology", []string{"zoo"}},
}

// AliasTable resolves free-text queries to canonical department names.
type AliasTable struct {
	entries []AliasEntry
	byName  map[string]string // lowercased canonical/alias -> canonical
}

// NewAliasTable builds the table from the built-in alias list.
func NewAliasTable() *AliasTable {
	return newAliasTable(departmentAliases)
}

func newAliasTable(entries []AliasEntry) *AliasTable {
	t := &AliasTable{
		entries: entries,
		byName:  make(map[string]string),
	}
	for _, e := range entries {
		t.byName[strings.ToLower(e.Canonical)] = e.Canonical
		for _, alias := range e.Aliases {
			t.byName[strings.ToLower(alias)] = e.Canonical
		}
	}
	return t
}

// Match resolves a query to a canonical department when the query equals a
// canonical name or alias, or is a word-start prefix of one. Returns the
// canonical name.
func (t *AliasTable) Match(query string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(query))
	if lower == "" {
		return "", false
	}

	if canonical, ok := t.byName[lower]; ok {
		return canonical, true
	}

	// Prefix of a canonical name or alias; first entry in table order wins
	// so the match is deterministic.
	for _, e := range t.entries {
		if strings.HasPrefix(strings.ToLower(e.Canonical), lower) {
			return e.Canonical, true
		}
		for _, alias := range e.Aliases {
			if strings.HasPrefix(strings.ToLower(alias), lower) {
				return e.Canonical, true
			}
		}
	}
	return "", false
}

// MatchSubstring resolves a query appearing anywhere inside a canonical name
// or alias. Queries under 3 characters never match.
func (t *AliasTable) MatchSubstring(query string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(query))
	if len(lower) < 3 {
		return "", false
	}

	for _, e := range t.entries {
		if utils.ContainsFold(e.Canonical, lower) {
			return e.Canonical, true
		}
		for _, alias := range e.Aliases {
			if utils.ContainsFold(alias, lower) {
				return e.Canonical, true
			}
		}
	}
	return "", false
}

// Canonicals returns every canonical department name in table order.
func (t *AliasTable) Canonicals() []string {
	out := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e.Canonical)
	}
	return out
}

// Size returns the number of department entries.
func (t *AliasTable) Size() int {
	return len(t.entries)
}
