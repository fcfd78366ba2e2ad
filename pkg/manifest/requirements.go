package manifest

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/nsanches/depcheck/pkg/vuln"
)

var (
	// pinnedRE matches "name <op> version" with any combination of
	// comparison operators. Only the first numeric version on the line is
	// captured; further constraints ("foo>=1.2,<2.0") are ignored.
	pinnedRE = regexp.MustCompile(`^([A-Za-z0-9_-]+)\s*([><=!]+)\s*([0-9.]+)`)

	// bareRE matches a line that is nothing but a package name. Lines with
	// trailing content that is not a recognized constraint (URLs, editable
	// installs, environment markers) are skipped entirely.
	bareRE = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// Requirements parses line-oriented requirements.txt manifests.
// Blank lines and comments are skipped; lines that start with neither a name
// token nor a pinned constraint (editable installs, local paths) are dropped.
type Requirements struct{}

func (r *Requirements) Ecosystem() vuln.Ecosystem { return vuln.EcosystemPip }

func (r *Requirements) Supports(name string) bool {
	return name == "requirements.txt" ||
		(strings.HasPrefix(name, "requirements") && strings.HasSuffix(name, ".txt"))
}

func (r *Requirements) Parse(path string) ([]PackageRef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var refs []PackageRef
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		if m := pinnedRE.FindStringSubmatch(line); m != nil {
			refs = append(refs, PackageRef{Name: m[1], Version: m[3]})
			continue
		}
		if bareRE.MatchString(line) {
			refs = append(refs, PackageRef{Name: line})
		}
	}
	return refs, scanner.Err()
}
