package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nsanches/depcheck/pkg/vuln"
)

// NPMAudit checks npm dependencies by running "npm audit --json" in the
// project directory. Both audit output schemas are understood: npm v7+
// reports a top-level "vulnerabilities" map keyed by package; npm v6 reports
// a top-level "advisories" map keyed by advisory ID.
type NPMAudit struct {
	runner Runner
	log    *log.Logger
}

// NewNPMAudit creates the npm audit provider. A nil logger discards output.
func NewNPMAudit(runner Runner, logger *log.Logger) *NPMAudit {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &NPMAudit{runner: runner, log: logger}
}

// Name identifies this provider in report metadata.
func (a *NPMAudit) Name() string { return "npm-audit" }

// Check runs npm audit in dir and returns the normalized findings.
// Every failure mode (tool missing, timeout, unusable output) returns an
// empty list.
func (a *NPMAudit) Check(ctx context.Context, dir string) []vuln.Finding {
	res, err := a.runner.Run(ctx, dir, "npm", "audit", "--json")
	if err != nil && res.Stdout == "" {
		a.log.Debug("npm audit unavailable", "dir", dir, "code", res.ExitCode, "err", err)
		return nil
	}
	if strings.TrimSpace(res.Stdout) == "" {
		return nil
	}

	findings, err := parseNPMAudit(res.Stdout)
	if err != nil {
		a.log.Debug("npm audit output not parseable", "dir", dir, "err", err)
		return nil
	}
	return findings
}

type npmReport struct {
	// npm v7+ schema
	Vulnerabilities map[string]npmVuln `json:"vulnerabilities"`
	// npm v6 schema
	Advisories map[string]npmAdvisory `json:"advisories"`
}

type npmVuln struct {
	Severity string            `json:"severity"`
	Via      []json.RawMessage `json:"via"`
}

// npmVia is one advisory object inside a v7+ "via" array. The array mixes
// these objects with bare package-name strings for transitive entries.
type npmVia struct {
	Title    string `json:"title"`
	CVE      string `json:"cve"`
	URL      string `json:"url"`
	Severity string `json:"severity"`
}

type npmAdvisory struct {
	ModuleName string `json:"module_name"`
	Title      string `json:"title"`
	Severity   string `json:"severity"`
}

// parseNPMAudit dispatches on which top-level field is present. A present but
// empty map still selects its schema, mirroring how npm itself always emits
// the field for its version.
func parseNPMAudit(out string) ([]vuln.Finding, error) {
	var report npmReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		return nil, err
	}

	switch {
	case report.Vulnerabilities != nil:
		return parseV7(report.Vulnerabilities), nil
	case report.Advisories != nil:
		return parseV6(report.Advisories), nil
	}
	return nil, nil
}

// parseV7 synthesizes one finding per package, concatenating each advisory's
// title/CVE/URL with " | ". Packages whose via entries are all transitive
// strings produce no finding.
func parseV7(vulns map[string]npmVuln) []vuln.Finding {
	var findings []vuln.Finding
	for _, pkg := range sortedKeys(vulns) {
		var parts []string
		for _, raw := range vulns[pkg].Via {
			var via npmVia
			if err := json.Unmarshal(raw, &via); err != nil {
				continue // bare string entry, transitive cause
			}
			desc := via.Title
			if via.CVE != "" {
				desc = fmt.Sprintf("%s: %s", via.CVE, desc)
			}
			if via.URL != "" {
				desc += " - " + via.URL
			}
			parts = append(parts, desc)
		}
		if len(parts) == 0 {
			continue
		}
		findings = append(findings, vuln.Finding{
			Ecosystem:   vuln.EcosystemNPM,
			Package:     pkg,
			Description: strings.Join(parts, " | "),
		})
	}
	return findings
}

// parseV6 synthesizes one finding per advisory record.
func parseV6(advisories map[string]npmAdvisory) []vuln.Finding {
	var findings []vuln.Finding
	for _, id := range sortedKeys(advisories) {
		adv := advisories[id]
		pkg := adv.ModuleName
		if pkg == "" {
			pkg = "unknown"
		}
		title := adv.Title
		if title == "" {
			title = "No title"
		}
		severity := adv.Severity
		if severity == "" {
			severity = "unknown"
		}
		findings = append(findings, vuln.Finding{
			Ecosystem:   vuln.EcosystemNPM,
			Package:     pkg,
			Description: fmt.Sprintf("%s - Severity: %s", title, severity),
		})
	}
	return findings
}

// sortedKeys keeps finding order deterministic across runs; JSON object
// order is not preserved by Go maps.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
