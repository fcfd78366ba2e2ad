package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nsanches/depcheck/pkg/vuln"
)

// PipAudit checks Python dependencies declared in requirements.txt.
// It prefers pip-audit; when pip-audit is unavailable or its output is
// unusable it falls back to safety. There is exactly one fallback level:
// when both tools fail the provider returns nothing.
type PipAudit struct {
	runner Runner
	log    *log.Logger
}

// NewPipAudit creates the Python audit provider. A nil logger discards output.
func NewPipAudit(runner Runner, logger *log.Logger) *PipAudit {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &PipAudit{runner: runner, log: logger}
}

// Name identifies this provider in report metadata.
func (a *PipAudit) Name() string { return "pip-audit" }

// Check audits dir/requirements.txt and returns the normalized findings.
func (a *PipAudit) Check(ctx context.Context, dir string) []vuln.Finding {
	reqPath := filepath.Join(dir, "requirements.txt")

	if findings, ok := a.runPipAudit(ctx, dir, reqPath); ok {
		return findings
	}
	return a.runSafety(ctx, dir, reqPath)
}

// runPipAudit reports ok=false when the tool produced no usable JSON and the
// fallback should be attempted. A successful parse with zero vulnerabilities
// is still ok=true: a clean bill of health is not a failure.
func (a *PipAudit) runPipAudit(ctx context.Context, dir, reqPath string) ([]vuln.Finding, bool) {
	res, err := a.runner.Run(ctx, dir, "pip-audit", "--format", "json", "-r", reqPath)
	if err != nil && res.Stdout == "" {
		a.log.Debug("pip-audit unavailable", "code", res.ExitCode, "err", err)
		return nil, false
	}
	if strings.TrimSpace(res.Stdout) == "" {
		return nil, false
	}

	var report pipAuditReport
	if err := json.Unmarshal([]byte(res.Stdout), &report); err != nil {
		a.log.Debug("pip-audit output not parseable", "err", err)
		return nil, false
	}

	var findings []vuln.Finding
	for _, dep := range report.Dependencies {
		name := dep.Name
		if name == "" {
			name = "unknown"
		}
		for _, v := range dep.Vulns {
			id := v.ID
			if id == "" {
				id = "Unknown CVE"
			}
			desc := v.Description
			if desc == "" {
				desc = "No description available"
			}
			findings = append(findings, vuln.Finding{
				Ecosystem:   vuln.EcosystemPip,
				Package:     name,
				Description: fmt.Sprintf("%s: %s", id, desc),
			})
		}
	}
	return findings, true
}

// runSafety parses safety's flat record format: a JSON array whose entries
// are arrays of at least four elements, name first and description fourth.
// Entries of any other shape are skipped.
func (a *PipAudit) runSafety(ctx context.Context, dir, reqPath string) []vuln.Finding {
	res, err := a.runner.Run(ctx, dir, "safety", "check", "--json", "-r", reqPath)
	if err != nil && res.Stdout == "" {
		a.log.Debug("safety unavailable", "code", res.ExitCode, "err", err)
		return nil
	}
	if strings.TrimSpace(res.Stdout) == "" {
		return nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal([]byte(res.Stdout), &records); err != nil {
		a.log.Debug("safety output not parseable", "err", err)
		return nil
	}

	var findings []vuln.Finding
	for _, raw := range records {
		var rec []any
		if err := json.Unmarshal(raw, &rec); err != nil || len(rec) < 4 {
			continue
		}
		name, _ := rec[0].(string)
		desc, _ := rec[3].(string)
		findings = append(findings, vuln.Finding{
			Ecosystem:   vuln.EcosystemPip,
			Package:     name,
			Description: desc,
		})
	}
	return findings
}

type pipAuditReport struct {
	Dependencies []pipDependency `json:"dependencies"`
}

type pipDependency struct {
	Name  string         `json:"name"`
	Vulns []pipAuditVuln `json:"vulns"`
}

type pipAuditVuln struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}
