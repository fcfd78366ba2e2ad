package scan

import (
	"encoding/json"
	"time"

	"github.com/nsanches/depcheck/pkg/vuln"
)

// Report is the outcome of one scan run.
type Report struct {
	ID        string         `json:"id"`
	Path      string         `json:"path"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"-"`
	Manifests []string       `json:"manifests"`
	Providers []string       `json:"providers"`
	Packages  int            `json:"packages"`
	Findings  []vuln.Finding `json:"findings"`
}

// MarshalJSON renders the duration in milliseconds so the report is readable
// without knowing Go's nanosecond convention.
func (r *Report) MarshalJSON() ([]byte, error) {
	type alias Report
	return json.Marshal(struct {
		*alias
		DurationMS int64 `json:"duration_ms"`
	}{
		alias:      (*alias)(r),
		DurationMS: r.Duration.Milliseconds(),
	})
}

// Clean reports whether the scan produced no findings.
func (r *Report) Clean() bool { return len(r.Findings) == 0 }

// addProvider records a consulted provider, once.
func (r *Report) addProvider(name string) {
	for _, p := range r.Providers {
		if p == name {
			return
		}
	}
	r.Providers = append(r.Providers, name)
}
