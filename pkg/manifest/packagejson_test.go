package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nsanches/depcheck/pkg/vuln"
)

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPackageJSON_Supports(t *testing.T) {
	parser := &PackageJSON{}

	tests := []struct {
		filename string
		want     bool
	}{
		{"package.json", true},
		{"Package.JSON", true},
		{"package-lock.json", false},
		{"requirements.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := parser.Supports(tt.filename); got != tt.want {
				t.Errorf("Supports(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestPackageJSON_Parse(t *testing.T) {
	path := writeManifest(t, "package.json", `{
  "name": "demo",
  "dependencies": {
    "lodash": "^4.17.20",
    "express": ">= 4.18.2",
    "left-pad": "1.3.0"
  },
  "devDependencies": {
    "jest": "~29.0.0",
    "eslint": "<=8.0.0"
  }
}`)

	parser := &PackageJSON{}
	refs, err := parser.Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(refs) != 5 {
		t.Fatalf("got %d refs, want 5", len(refs))
	}

	want := map[string]string{
		"lodash":   "4.17.20",
		"express":  "4.18.2",
		"left-pad": "1.3.0",
		"jest":     "29.0.0",
		"eslint":   "8.0.0",
	}
	for _, ref := range refs {
		v, ok := want[ref.Name]
		if !ok {
			t.Errorf("unexpected package %q", ref.Name)
			continue
		}
		if ref.Version != v {
			t.Errorf("%s: version = %q, want %q", ref.Name, ref.Version, v)
		}
	}
}

func TestPackageJSON_Parse_DuplicateAcrossGroups(t *testing.T) {
	path := writeManifest(t, "package.json", `{
  "dependencies": {"typescript": "^5.0.0"},
  "devDependencies": {"typescript": "^5.2.0"}
}`)

	refs, err := (&PackageJSON{}).Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(refs) != 2 {
		t.Errorf("got %d refs, want 2 (no dedup at parse stage)", len(refs))
	}
}

func TestPackageJSON_Parse_Degraded(t *testing.T) {
	tests := []struct {
		name    string
		content string
		missing bool
	}{
		{"malformed json", `{"dependencies": `, false},
		{"no dependency groups", `{"name": "demo"}`, false},
		{"missing file", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "package.json")
			if !tt.missing {
				if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
					t.Fatal(err)
				}
			}
			refs, _ := (&PackageJSON{}).Parse(path)
			if len(refs) != 0 {
				t.Errorf("got %d refs, want 0", len(refs))
			}
		})
	}
}

func TestPackageJSON_Ecosystem(t *testing.T) {
	if eco := (&PackageJSON{}).Ecosystem(); eco != vuln.EcosystemNPM {
		t.Errorf("Ecosystem() = %q, want %q", eco, vuln.EcosystemNPM)
	}
}

func TestCleanVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"^1.0.0", "1.0.0"},
		{"~2.3.4", "2.3.4"},
		{">=1.2.3", "1.2.3"},
		{"<= 8.0.0", "8.0.0"},
		{"=1.0.0", "1.0.0"},
		{"1.0.0", "1.0.0"},
		{" 1.0.0 ", "1.0.0"},
	}

	for _, tt := range tests {
		if got := cleanVersion(tt.in); got != tt.want {
			t.Errorf("cleanVersion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
