package main

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

const testIndex = `packages:
  Django: ["1.4", "1.5", "1.8", "2.0b1"]
  requests: ["2.0.0", "2.31.0"]
  pytz: ["2013.9", "2014.1"]
`

type testProject struct {
	dir   string
	index string
}

func newTestProject(t *testing.T, files map[string]string) testProject {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	index := filepath.Join(dir, "index.yaml")
	if err := os.WriteFile(index, []byte(testIndex), 0644); err != nil {
		t.Fatal(err)
	}
	return testProject{dir: dir, index: index}
}

func (p testProject) path(name string) string {
	return filepath.Join(p.dir, name)
}

func (p testProject) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(p.path(name))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCheck(t *testing.T) {
	p := newTestProject(t, map[string]string{
		"requirements.txt": "-r dev.txt\nDjango==1.4\n",
		"dev.txt":          "requests\npytz==2014.1\n",
	})

	out, err := execute(t, "check", "--index-file", p.index, p.path("requirements.txt"))
	if err != nil {
		t.Fatalf("check error = %v", err)
	}
	for _, want := range []string{"Django", "1.8", "requests", "2.31.0", "2 updates pending"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "pytz") {
		t.Errorf("up to date requirement listed:\n%s", out)
	}
	if got := p.read(t, "requirements.txt"); got != "-r dev.txt\nDjango==1.4\n" {
		t.Errorf("check modified requirements.txt: %q", got)
	}
}

func writeTarball(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, "project-1.0.tar.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		hdr := &tar.Header{Name: "project-1.0/" + name, Mode: 0644, Size: int64(len(content)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheck_ArchiveManifests(t *testing.T) {
	p := newTestProject(t, nil)
	tarball := writeTarball(t, p.dir, map[string]string{
		"requirements.txt":      "Django==1.4\n",
		"requirements-dev.txt":  "requests==2.0.0\n",
		"docs/requirements.txt": "pytz==2013.9\n",
		"setup.py":              "",
	})

	out, err := execute(t, "check", "--index-file", p.index, "--archive", tarball)
	if err != nil {
		t.Fatalf("check error = %v", err)
	}
	for _, want := range []string{"Django", "requests", "2 updates pending"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "pytz") {
		t.Errorf("nested manifest checked:\n%s", out)
	}
}

func TestCheck_UpToDate(t *testing.T) {
	p := newTestProject(t, map[string]string{"requirements.txt": "Django==1.8\n"})

	out, err := execute(t, "check", "--index-file", p.index, p.path("requirements.txt"))
	if err != nil {
		t.Fatalf("check error = %v", err)
	}
	if !strings.Contains(out, "All requirements up to date") {
		t.Errorf("output = %q", out)
	}
}

func TestCheck_MissingFile(t *testing.T) {
	p := newTestProject(t, nil)

	if _, err := execute(t, "check", "--index-file", p.index, p.path("requirements.txt")); err == nil {
		t.Error("check error = nil for a missing requirements file")
	}
}

func TestUpdate(t *testing.T) {
	p := newTestProject(t, map[string]string{
		"requirements.txt": "-r dev.txt\nDjango==1.4 # web\n",
		"dev.txt":          "requests>=2.0\n",
	})

	out, err := execute(t, "update", "--index-file", p.index, p.path("requirements.txt"))
	if err != nil {
		t.Fatalf("update error = %v", err)
	}
	if !strings.Contains(out, "Updated 2 requirements in 2 files") {
		t.Errorf("output = %q", out)
	}
	if got, want := p.read(t, "requirements.txt"), "-r dev.txt\nDjango==1.8 # web\n"; got != want {
		t.Errorf("requirements.txt = %q, want %q", got, want)
	}
	if got, want := p.read(t, "dev.txt"), "requests==2.31.0\n"; got != want {
		t.Errorf("dev.txt = %q, want %q", got, want)
	}
}

func TestUpdate_DryRun(t *testing.T) {
	p := newTestProject(t, map[string]string{"requirements.txt": "Django==1.4\n"})

	out, err := execute(t, "update", "--dry-run", "--index-file", p.index, p.path("requirements.txt"))
	if err != nil {
		t.Fatalf("update error = %v", err)
	}
	for _, want := range []string{"- Django==1.4", "+ Django==1.8"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if got := p.read(t, "requirements.txt"); got != "Django==1.4\n" {
		t.Errorf("dry run modified the file: %q", got)
	}
}

func TestCheckPlanThenUpdate(t *testing.T) {
	p := newTestProject(t, map[string]string{"requirements.txt": "Django==1.4\nrequests\n"})
	plan := p.path("plan.yaml")

	if _, err := execute(t, "check", "--index-file", p.index, "--plan", plan, p.path("requirements.txt")); err != nil {
		t.Fatalf("check error = %v", err)
	}
	if _, err := os.Stat(plan); err != nil {
		t.Fatalf("plan not written: %v", err)
	}

	if _, err := execute(t, "update", "--index-file", p.index, "--plan", plan); err != nil {
		t.Fatalf("update error = %v", err)
	}
	if got, want := p.read(t, "requirements.txt"), "Django==1.8\nrequests==2.31.0\n"; got != want {
		t.Errorf("requirements.txt = %q, want %q", got, want)
	}

	// The file moved on, so the plan is stale now.
	if _, err := execute(t, "update", "--index-file", p.index, "--plan", plan); err == nil {
		t.Error("applying a stale plan succeeded")
	}
}
