package index

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/frederic-klein/requp/internal/dist"
)

func TestStatic_VersionsFor(t *testing.T) {
	s := NewStatic(dist.Package{Name: "Flask_SQLAlchemy", Versions: []string{"2.0", "3.1.1", "3.0"}})

	got, err := s.VersionsFor(context.Background(), "flask-sqlalchemy")
	if err != nil {
		t.Fatalf("VersionsFor() error = %v", err)
	}
	if want := []string{"3.1.1", "3.0", "2.0"}; !reflect.DeepEqual(got, want) {
		t.Errorf("VersionsFor() = %v, want %v", got, want)
	}

	got, err = s.VersionsFor(context.Background(), "unknown")
	if err != nil || len(got) != 0 {
		t.Errorf("VersionsFor(unknown) = %v, %v, want empty", got, err)
	}
}

func TestStatic_Lookup(t *testing.T) {
	s := NewStatic(dist.Package{Name: "Django", Versions: []string{"1.4"}})

	p, ok := s.Lookup("DJANGO")
	if !ok {
		t.Fatal("Lookup(DJANGO) not found")
	}
	if p.Name != "Django" {
		t.Errorf("Name = %q, want Django", p.Name)
	}
	if _, ok := s.Lookup("flask"); ok {
		t.Error("Lookup(flask) found a package")
	}
}

func TestLoadStatic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.yaml")
	content := `packages:
  django: ["1.4", "1.10", "1.9"]
  bliss:
    - 1.8rc1
    - 1.9rc1
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadStatic(path)
	if err != nil {
		t.Fatalf("LoadStatic() error = %v", err)
	}

	tests := []struct {
		name string
		want []string
	}{
		{"Django", []string{"1.10", "1.9", "1.4"}},
		{"bliss", []string{"1.9rc1", "1.8rc1"}},
	}
	for _, tt := range tests {
		got, _ := s.VersionsFor(context.Background(), tt.name)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("VersionsFor(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLoadStatic_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadStatic(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadStatic(missing) error = nil")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("packages: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadStatic(bad); err == nil {
		t.Error("LoadStatic(bad) error = nil")
	}
}
