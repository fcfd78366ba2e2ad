// Package scan orchestrates a dependency scan over a project directory.
//
// A Scanner detects which manifests are present, parses them, and fans the
// declared packages out to the configured vulnerability providers: local
// audit tools first, then the remote CVE database. Provider failures never
// abort a scan; whatever each provider managed to gather ends up in the
// report, deduplicated in first-seen order.
package scan

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nsanches/depcheck/pkg/manifest"
	"github.com/nsanches/depcheck/pkg/vuln"
)

// AuditProvider runs a local audit tool against a project directory.
type AuditProvider interface {
	Name() string
	Check(ctx context.Context, dir string) []vuln.Finding
}

// RemoteProvider looks packages up in a remote vulnerability database.
type RemoteProvider interface {
	Name() string
	CheckPackages(ctx context.Context, eco vuln.Ecosystem, pkgs []manifest.PackageRef) []vuln.Finding
}

// Options configures a Scanner. Zero-value fields disable the corresponding
// capability: no parsers means nothing is detected, a nil Remote skips
// remote lookups entirely.
type Options struct {
	Parsers []manifest.Parser
	Local   map[vuln.Ecosystem]AuditProvider
	Remote  RemoteProvider
	Logger  *log.Logger
}

// Scanner coordinates manifest detection, local audits and remote lookups.
type Scanner struct {
	parsers []manifest.Parser
	local   map[vuln.Ecosystem]AuditProvider
	remote  RemoteProvider
	log     *log.Logger
}

// NewScanner creates a Scanner from the given options.
func NewScanner(opts Options) *Scanner {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Scanner{
		parsers: opts.Parsers,
		local:   opts.Local,
		remote:  opts.Remote,
		log:     opts.Logger,
	}
}

// Scan examines dir and returns a report of everything the providers found.
// It never fails: a missing or unreadable directory is treated like a
// directory without manifests, and every provider error downgrades to a log
// line and partial results.
func (s *Scanner) Scan(ctx context.Context, dir string) *Report {
	start := time.Now()
	report := &Report{
		ID:        uuid.NewString(),
		Path:      dir,
		StartedAt: start,
	}
	results := vuln.NewResultSet()
	audited := map[vuln.Ecosystem]bool{}

	for _, m := range manifest.Detect(dir, s.parsers...) {
		eco := m.Parser.Ecosystem()
		report.Manifests = append(report.Manifests, m.Filename)
		s.log.Info("manifest detected", "file", m.Filename, "ecosystem", eco)

		refs, err := m.Parser.Parse(filepath.Join(dir, m.Filename))
		if err != nil {
			s.log.Warn("manifest parse incomplete", "file", m.Filename, "err", err)
		}
		report.Packages += len(refs)

		if local, ok := s.local[eco]; ok && !audited[eco] {
			audited[eco] = true
			report.addProvider(local.Name())
			kept := results.AddAll(local.Check(ctx, dir))
			s.log.Debug("local audit finished", "provider", local.Name(), "new_findings", kept)
		}

		if s.remote != nil && len(refs) > 0 {
			report.addProvider(s.remote.Name())
			kept := results.AddAll(s.remote.CheckPackages(ctx, eco, refs))
			s.log.Debug("remote lookup finished", "provider", s.remote.Name(), "new_findings", kept)
		}
	}

	report.Findings = results.Findings()
	report.Duration = time.Since(start)
	return report
}
