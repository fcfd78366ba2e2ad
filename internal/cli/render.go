package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nsanches/depcheck/pkg/scan"
	"github.com/nsanches/depcheck/pkg/vuln"
)

// durationPrecision rounds the displayed scan duration.
const durationPrecision = time.Millisecond

// renderJSON serializes the report as indented JSON.
func renderJSON(report *scan.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

// renderText formats the report for terminal output. Findings are grouped by
// ecosystem in the order they were discovered.
func renderText(report *scan.Report) string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Dependency Scan Report"))
	b.WriteString("\n\n")

	writeKeyValue(&b, "Path", report.Path)
	writeKeyValue(&b, "Scan ID", report.ID)
	writeKeyValue(&b, "Manifests", joinOrDash(report.Manifests))
	writeKeyValue(&b, "Providers", joinOrDash(report.Providers))
	writeKeyValue(&b, "Packages", fmt.Sprintf("%d", report.Packages))
	writeKeyValue(&b, "Duration", report.Duration.Round(durationPrecision).String())
	b.WriteString("\n")

	if report.Clean() {
		b.WriteString(StyleSuccess.Render(iconSuccess) + " No known vulnerabilities found\n")
		return b.String()
	}

	b.WriteString(StyleWarning.Render(fmt.Sprintf("%s %d finding(s)", iconWarning, len(report.Findings))))
	b.WriteString("\n\n")

	for _, eco := range ecosystemOrder(report.Findings) {
		b.WriteString(StyleHighlight.Render(strings.ToUpper(eco.String())))
		b.WriteString("\n")
		for _, f := range report.Findings {
			if f.Ecosystem != eco {
				continue
			}
			b.WriteString("  " + StyleValue.Render(f.Package) + StyleDim.Render(" · ") + f.Description + "\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

// ecosystemOrder returns the distinct ecosystems in first-seen order.
func ecosystemOrder(findings []vuln.Finding) []vuln.Ecosystem {
	var order []vuln.Ecosystem
	seen := map[vuln.Ecosystem]bool{}
	for _, f := range findings {
		if !seen[f.Ecosystem] {
			seen[f.Ecosystem] = true
			order = append(order, f.Ecosystem)
		}
	}
	return order
}

func writeKeyValue(b *strings.Builder, key, value string) {
	b.WriteString(styleKey.Render(key) + " " + StyleValue.Render(value) + "\n")
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "—"
	}
	return strings.Join(items, ", ")
}
