// Package nvd queries the National Vulnerability Database CVE API for
// keyword matches against declared package names.
//
// The unauthenticated API allows at most 5 requests per 30 seconds, so all
// lookups are sequential with a fixed inter-request delay. Keyword search is
// fuzzy: a result may be any CVE whose text mentions the package name.
// Callers get a best-effort finding list, never an aborted batch; a
// package whose lookup fails is skipped and the remaining packages are still
// queried.
package nvd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nsanches/depcheck/pkg/buildinfo"
	"github.com/nsanches/depcheck/pkg/httputil"
	"github.com/nsanches/depcheck/pkg/integrations"
	"github.com/nsanches/depcheck/pkg/manifest"
	"github.com/nsanches/depcheck/pkg/vuln"
)

const (
	// DefaultBaseURL is the CVE API 2.0 endpoint.
	DefaultBaseURL = "https://services.nvd.nist.gov/rest/json/cves/2.0"

	// DefaultResultsPerPage caps how many CVE records one keyword search
	// returns.
	DefaultResultsPerPage = 5

	// DefaultRequestDelay keeps sequential lookups under the
	// unauthenticated rate limit of 5 requests per 30 seconds.
	DefaultRequestDelay = 600 * time.Millisecond

	// descriptionLimit truncates CVE descriptions before formatting.
	descriptionLimit = 200

	noDescription = "No description available"
	unknownCVE    = "Unknown CVE"
)

// Options configures the NVD client.
type Options struct {
	BaseURL        string        // API endpoint (default: DefaultBaseURL)
	ResultsPerPage int           // per-keyword result cap (default: 5)
	RequestDelay   time.Duration // pause after each lookup (default: 600ms)
	Timeout        time.Duration // per-request HTTP timeout (default: 10s)
	RetryAttempts  int           // attempts per request (default: 1)
	UserAgent      string        // request User-Agent (default: depcheck/<version>)
	Logger         *log.Logger   // lookup failure logging (default: discard)
}

// WithDefaults returns a copy of Options with zero values replaced.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.ResultsPerPage <= 0 {
		opts.ResultsPerPage = DefaultResultsPerPage
	}
	if opts.RequestDelay <= 0 {
		opts.RequestDelay = DefaultRequestDelay
	}
	if opts.Timeout <= 0 {
		opts.Timeout = integrations.DefaultTimeout
	}
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = 1
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "depcheck/" + buildinfo.Version
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return opts
}

// Client provides access to the NVD CVE API.
//
// Lookups are serialized; the client is not meant for concurrent use, which
// matches the rate-limit policy it enforces.
type Client struct {
	http           *integrations.Client
	baseURL        string
	resultsPerPage int
	delay          time.Duration
	attempts       int
	log            *log.Logger
}

// NewClient creates an NVD client. The zero Options value gives the
// production defaults.
func NewClient(opts Options) *Client {
	opts = opts.WithDefaults()
	return &Client{
		http:           integrations.NewClient(opts.Timeout, map[string]string{"User-Agent": opts.UserAgent}),
		baseURL:        opts.BaseURL,
		resultsPerPage: opts.ResultsPerPage,
		delay:          opts.RequestDelay,
		attempts:       opts.RetryAttempts,
		log:            opts.Logger,
	}
}

// Name identifies this provider in scan reports.
func (c *Client) Name() string { return "nvd" }

// CheckPackages looks every package up by keyword and returns the formatted
// findings. Lookups run sequentially with the configured delay after each
// one, success or failure. A failed lookup drops only that package's
// results. Cancelling ctx stops the batch early with whatever was gathered.
func (c *Client) CheckPackages(ctx context.Context, eco vuln.Ecosystem, pkgs []manifest.PackageRef) []vuln.Finding {
	var findings []vuln.Finding
	for _, pkg := range pkgs {
		keyword := eco.Label() + " " + pkg.Name
		records, err := c.search(ctx, keyword)
		if err != nil {
			c.log.Warn("vulnerability lookup failed", "keyword", keyword, "err", err)
		}
		for _, rec := range records {
			findings = append(findings, vuln.Finding{
				Ecosystem:   eco,
				Package:     pkg.Name,
				Description: rec.describe(pkg.Version),
			})
		}
		if !c.pause(ctx) {
			break
		}
	}
	return findings
}

// search performs one keyword query against the CVE endpoint.
func (c *Client) search(ctx context.Context, keyword string) ([]cveRecord, error) {
	url := c.baseURL + "?" + integrations.EncodeQuery(
		"keywordSearch", keyword,
		"resultsPerPage", strconv.Itoa(c.resultsPerPage),
	)

	var resp searchResponse
	err := httputil.Retry(ctx, c.attempts, time.Second, func() error {
		resp = searchResponse{}
		return c.http.GetJSON(ctx, url, &resp)
	})
	if err != nil {
		return nil, err
	}

	records := make([]cveRecord, 0, len(resp.Vulnerabilities))
	for _, item := range resp.Vulnerabilities {
		records = append(records, item.CVE)
	}
	return records, nil
}

// pause waits the inter-request delay, honoring cancellation.
// It reports whether the batch should continue.
func (c *Client) pause(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.delay):
		return true
	}
}

// --- API schema ---

type searchResponse struct {
	Vulnerabilities []struct {
		CVE cveRecord `json:"cve"`
	} `json:"vulnerabilities"`
}

type cveRecord struct {
	ID           string           `json:"id"`
	Descriptions []cveDescription `json:"descriptions"`
	Metrics      cveMetrics       `json:"metrics"`
}

type cveDescription struct {
	Lang  string `json:"lang"`
	Value string `json:"value"`
}

// cveMetrics carries the CVSS blocks across schema generations. Records
// populate whichever blocks their scoring history includes.
type cveMetrics struct {
	V31 []cvssMetric `json:"cvssMetricV31"`
	V30 []cvssMetric `json:"cvssMetricV30"`
	V2  []cvssMetric `json:"cvssMetricV2"`
}

type cvssMetric struct {
	CVSSData cvssData `json:"cvssData"`
}

type cvssData struct {
	BaseScore    *float64 `json:"baseScore"`
	BaseSeverity string   `json:"baseSeverity"`
}

// describe composes the finding description:
// "<id>: <description truncated to 200 chars>[ [CVSS: score - severity]][ (Package version: v)]".
func (r cveRecord) describe(version string) string {
	id := r.ID
	if id == "" {
		id = unknownCVE
	}

	desc := noDescription
	for _, d := range r.Descriptions {
		if d.Lang == "en" {
			desc = d.Value
			break
		}
	}

	s := fmt.Sprintf("%s: %s%s", id, truncate(desc, descriptionLimit), r.Metrics.severitySuffix())
	if version != "" {
		s = fmt.Sprintf("%s (Package version: %s)", s, version)
	}
	return s
}

// severitySuffix picks the best available CVSS metric, newest schema first.
// Records without any CVSS block yield no suffix at all.
func (m cveMetrics) severitySuffix() string {
	for _, block := range [][]cvssMetric{m.V31, m.V30, m.V2} {
		if len(block) == 0 {
			continue
		}
		data := block[0].CVSSData
		score := "N/A"
		if data.BaseScore != nil {
			score = strconv.FormatFloat(*data.BaseScore, 'f', -1, 64)
		}
		severity := data.BaseSeverity
		if severity == "" {
			severity = "UNKNOWN"
		}
		return fmt.Sprintf(" [CVSS: %s - %s]", score, severity)
	}
	return ""
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
