package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestProjectsFilter(t *testing.T) {
	out, err := run(t, "projects", "--filter", "Web Design")
	if err != nil {
		t.Fatalf("projects: %v", err)
	}
	if !strings.Contains(out, "Julia 1&2 Website") {
		t.Fatalf("missing filtered project:\n%s", out)
	}
	if strings.Contains(out, "Brand Identity Design") {
		t.Fatalf("filter let another type through:\n%s", out)
	}
}

func TestProjectsUnknownCategory(t *testing.T) {
	if _, err := run(t, "projects", "--filter", "Sculpture"); err == nil {
		t.Fatalf("expected an error for an empty category")
	}
}

func TestProjectsCategories(t *testing.T) {
	out, err := run(t, "projects", "--categories")
	if err != nil {
		t.Fatalf("projects: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 || lines[0] != "All" {
		t.Fatalf("categories = %q", lines)
	}
}

func TestCVWritesPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.pdf")
	if _, err := run(t, "cv", "--lang", "fi", "-o", path); err != nil {
		t.Fatalf("cv: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Fatalf("not a PDF")
	}
}

func TestLoadConfigExplicitMissingFile(t *testing.T) {
	o := &rootOptions{configPath: filepath.Join(t.TempDir(), "nope.yaml")}
	if _, err := o.loadConfig(); err == nil {
		t.Fatalf("expected an error for a missing explicit config")
	}
}
