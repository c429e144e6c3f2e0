/*
Package dictionary holds the static course-catalog tables used by the
suggestion engine: course-code prefixes mapped to departments, and department
alias lists. Both tables are built once at startup and never mutated.
*/
package dictionary

import (
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// PrefixEntry maps a short alphabetic course-code prefix to the departments
// that teach courses under it.
type PrefixEntry struct {
	Prefix      string
	Departments []string
}

// coursePrefixes is the built-in catalog table. Prefixes may overlap
// ("EC" and "ECE"); matching always prefers the longest entry.
var coursePrefixes = []PrefixEntry{
	{"ACC", []string{"Accounting"}},
	{"ARC", []string{"Architecture"}},
	{"BCH", []string{"Biochemistry"}},
	{"BIO", []string{"Biological Sciences"}},
	{"BUS", []string{"Business Administration"}},
	{"CEN", []string{"Civil Engineering"}},
	{"CHE", []string{"Chemical Engineering"}},
	{"CHM", []string{"Chemistry"}},
	{"CS", []string{"Computer Science"}},
	{"CSC", []string{"Computer Science"}},
	{"EC", []string{"Economics"}},
	{"ECE", []string{"Electrical and Computer Engineering"}},
	{"ECN", []string{"Economics"}},
	{"EEE", []string{"Electrical and Electronics Engineering"}},
	{"ENG", []string{"English and Literary Studies"}},
	{"FIN", []string{"Finance"}},
	{"GEO", []string{"Geography", "Geology"}},
	{"GST", []string{"General Studies"}},
	{"HIS", []string{"History and International Studies"}},
	{"LAW", []string{"Law"}},
	{"MCB", []string{"Microbiology"}},
	{"MEE", []string{"Mechanical Engineering"}},
	{"MKT", []string{"Marketing"}},
	{"MTH", []string{"Mathematics"}},
	{"PHL", []string{"Philosophy"}},
	{"PHY", []string{"Physics"}},
	{"POL", []string{"Political Science"}},
	{"PSY", []string{"Psychology"}},
	{"SOC", []string{"Sociology"}},
	{"ST", []string{"Statistics"}},
	{"STA", []string{"Statistics"}},
	{"ZOO", []string{"Zoology"}},
}

// PrefixTable answers course-code prefix lookups. Prefixes are stored
// uppercased in a patricia trie so longest-prefix matching is a single
// VisitPrefixes walk.
type PrefixTable struct {
	trie     *patricia.Trie
	byDept   map[string][]string
	prefixes []string
}

// NewPrefixTable builds the table from the built-in catalog.
func NewPrefixTable() *PrefixTable {
	return newPrefixTable(coursePrefixes)
}

func newPrefixTable(entries []PrefixEntry) *PrefixTable {
	t := &PrefixTable{
		trie:   patricia.NewTrie(),
		byDept: make(map[string][]string),
	}
	for _, e := range entries {
		prefix := strings.ToUpper(e.Prefix)
		t.trie.Insert(patricia.Prefix(prefix), e.Departments)
		t.prefixes = append(t.prefixes, prefix)
		for _, dept := range e.Departments {
			key := strings.ToLower(dept)
			t.byDept[key] = append(t.byDept[key], prefix)
		}
	}
	sort.Strings(t.prefixes)
	return t
}

// Lookup returns the departments for an exact prefix, if known.
func (t *PrefixTable) Lookup(prefix string) ([]string, bool) {
	item := t.trie.Get(patricia.Prefix(strings.ToUpper(prefix)))
	if item == nil {
		return nil, false
	}
	depts, ok := item.([]string)
	if !ok {
		log.Errorf("Unknown item type: %T for prefix %s", item, prefix)
		return nil, false
	}
	return depts, true
}

// MatchLongest finds the longest known prefix that the uppercased query
// starts with. A 3-letter entry always shadows a 2-letter one.
func (t *PrefixTable) MatchLongest(query string) (string, []string, bool) {
	upper := strings.ToUpper(query)

	var matched string
	var depts []string

	err := t.trie.VisitPrefixes(patricia.Prefix(upper), func(p patricia.Prefix, item patricia.Item) error {
		// VisitPrefixes walks shortest to longest; keep the last hit.
		if d, ok := item.([]string); ok {
			matched = string(p)
			depts = d
		}
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting prefix trie: %v", err)
		return "", nil, false
	}

	if matched == "" {
		return "", nil, false
	}
	return matched, depts, true
}

// PrefixesFor returns the course-code prefixes taught by a department,
// sorted for stable output.
func (t *PrefixTable) PrefixesFor(department string) []string {
	prefixes := t.byDept[strings.ToLower(department)]
	out := make([]string, len(prefixes))
	copy(out, prefixes)
	sort.Strings(out)
	return out
}

// Size returns the number of prefix entries in the table.
func (t *PrefixTable) Size() int {
	return len(t.prefixes)
}
