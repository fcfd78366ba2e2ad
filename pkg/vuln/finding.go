// Package vuln defines the normalized vulnerability finding model shared by
// every provider and the scan orchestrator.
//
// A Finding is the unit of output: one reported association between a package
// in some ecosystem and a human-readable vulnerability description. Findings
// are never mutated after creation; providers emit them and the orchestrator
// accumulates them into a ResultSet.
package vuln

// Ecosystem identifies the package-management domain a finding belongs to.
type Ecosystem string

const (
	EcosystemNPM Ecosystem = "npm"
	EcosystemPip Ecosystem = "pip"
)

// Label returns the search label used when querying vulnerability databases.
// NVD entries for Python packages are keyed on "python", not "pip".
func (e Ecosystem) Label() string {
	if e == EcosystemPip {
		return "python"
	}
	return string(e)
}

func (e Ecosystem) String() string { return string(e) }

// Finding is one reported vulnerability association.
//
// Two findings are considered the same iff ecosystem, package and description
// all match byte-for-byte. Near-duplicate descriptions from different
// providers stay separate.
type Finding struct {
	Ecosystem   Ecosystem `json:"ecosystem"`
	Package     string    `json:"package"`
	Description string    `json:"description"`
}

// Key is the identity triple used for deduplication.
type Key struct {
	Ecosystem   Ecosystem
	Package     string
	Description string
}

// Key returns the finding's deduplication key.
func (f Finding) Key() Key {
	return Key{Ecosystem: f.Ecosystem, Package: f.Package, Description: f.Description}
}

// ResultSet accumulates findings while deduplicating on the identity triple.
// Insertion order of first occurrences is preserved; a second finding with the
// same key is dropped regardless of which provider produced it.
//
// The zero value is not usable; create one with NewResultSet. Not safe for
// concurrent use, which matches the single-caller scan contract.
type ResultSet struct {
	seen     map[Key]struct{}
	findings []Finding
}

// NewResultSet creates an empty result set.
func NewResultSet() *ResultSet {
	return &ResultSet{seen: make(map[Key]struct{})}
}

// Add appends f unless an identical finding was already recorded.
// It reports whether f was kept.
func (r *ResultSet) Add(f Finding) bool {
	k := f.Key()
	if _, dup := r.seen[k]; dup {
		return false
	}
	r.seen[k] = struct{}{}
	r.findings = append(r.findings, f)
	return true
}

// AddAll adds every finding in fs, preserving order, and returns how many
// were kept.
func (r *ResultSet) AddAll(fs []Finding) int {
	kept := 0
	for _, f := range fs {
		if r.Add(f) {
			kept++
		}
	}
	return kept
}

// Len returns the number of unique findings recorded so far.
func (r *ResultSet) Len() int { return len(r.findings) }

// Findings returns the unique findings in first-seen order.
// The returned slice is owned by the caller; the set keeps its own storage.
func (r *ResultSet) Findings() []Finding {
	out := make([]Finding, len(r.findings))
	copy(out, r.findings)
	return out
}
