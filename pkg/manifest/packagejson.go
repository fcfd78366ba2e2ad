package manifest

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/nsanches/depcheck/pkg/vuln"
)

// versionOperators are the range/comparison characters stripped from the
// front of package.json version constraints ("^1.2.0", ">= 4.17.21", ...).
const versionOperators = "^~><= \t"

// PackageJSON parses package.json files. It extracts the union of the
// dependencies and devDependencies groups; a name listed in both groups
// produces two references.
type PackageJSON struct{}

func (p *PackageJSON) Ecosystem() vuln.Ecosystem { return vuln.EcosystemNPM }

func (p *PackageJSON) Supports(name string) bool {
	return strings.EqualFold(name, "package.json")
}

func (p *PackageJSON) Parse(path string) ([]PackageRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var pkg packageFile
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}

	var refs []PackageRef
	for _, group := range []map[string]string{pkg.Dependencies, pkg.DevDependencies} {
		for name, constraint := range group {
			refs = append(refs, PackageRef{Name: name, Version: cleanVersion(constraint)})
		}
	}
	return refs, nil
}

// cleanVersion strips leading range operators and surrounding whitespace,
// turning "^1.0.0" or ">= 2.3" into the bare version number.
func cleanVersion(v string) string {
	return strings.TrimSpace(strings.TrimLeft(v, versionOperators))
}

type packageFile struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}
