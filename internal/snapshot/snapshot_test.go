package snapshot

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/frederic-klein/requp/internal/dist"
)

func TestEmitter_Emit_RoundTrip(t *testing.T) {
	updates := []dist.Update{
		{Path: "requirements/dev.txt", Line: 3, Name: "pytest", Kind: dist.KindLoose, Target: "8.0.0",
			Old: "pytest", New: "pytest==8.0.0"},
		{Path: "requirements.txt", Line: 7, Name: "requests", Kind: dist.KindRanged, Target: "2.31.0",
			Old: "requests>=2.0 ; python_version >= \"3.8\"", New: "requests==2.31.0 ; python_version >= \"3.8\""},
		{Path: "requirements.txt", Line: 1, Name: "Django", Kind: dist.KindPinned, Current: "1.4", Target: "1.8",
			Old: "Django==1.4 # rq.filter: <2", New: "Django==1.8 # rq.filter: <2"},
	}
	skips := []dist.Skip{{Path: "requirements.txt", Line: 2, Name: "flask", Reason: "up to date"}}

	var buf bytes.Buffer
	if err := NewEmitter(&buf).Emit(updates, skips); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), header) {
		t.Errorf("output does not start with header:\n%s", buf.String())
	}

	plan, err := NewParser(&buf).Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []dist.Update{updates[2], updates[1], updates[0]}
	if !reflect.DeepEqual(plan.Updates, want) {
		t.Errorf("Updates =\n%+v\nwant\n%+v", plan.Updates, want)
	}
	if !reflect.DeepEqual(plan.Skipped, skips) {
		t.Errorf("Skipped = %+v, want %+v", plan.Skipped, skips)
	}
	if want := []string{"requirements.txt", "requirements/dev.txt"}; !reflect.DeepEqual(plan.Paths(), want) {
		t.Errorf("Paths() = %v, want %v", plan.Paths(), want)
	}
}

func TestEmitter_Emit_DoesNotReorderInput(t *testing.T) {
	updates := []dist.Update{
		{Path: "b.txt", Target: "1", Old: "b"},
		{Path: "a.txt", Target: "1", Old: "a"},
	}
	var buf bytes.Buffer
	if err := NewEmitter(&buf).Emit(updates, nil); err != nil {
		t.Fatal(err)
	}
	if updates[0].Path != "b.txt" {
		t.Error("Emit sorted the caller's slice")
	}
	if strings.Contains(buf.String(), "skipped") {
		t.Errorf("empty skip list was written:\n%s", buf.String())
	}
}

func TestParser_Parse(t *testing.T) {
	input := `# requp plan format: version 1
version: 1
updates:
  - path: requirements.txt
    line: 0
    name: Django
    kind: pinned
    current: "1.4"
    target: "1.8"
    old: Django==1.4
    new: Django==1.8
`
	plan, err := NewParser(strings.NewReader(input)).Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := dist.Update{
		Path: "requirements.txt", Name: "Django", Kind: dist.KindPinned,
		Current: "1.4", Target: "1.8", Old: "Django==1.4", New: "Django==1.8",
	}
	if len(plan.Updates) != 1 || plan.Updates[0] != want {
		t.Errorf("Updates = %+v, want [%+v]", plan.Updates, want)
	}
}

func TestParser_Parse_Empty(t *testing.T) {
	plan, err := NewParser(strings.NewReader("")).Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(plan.Updates) != 0 {
		t.Errorf("Updates = %+v, want none", plan.Updates)
	}
}

func TestParser_Parse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not yaml", "version: [1"},
		{"wrong version", "version: 2\nupdates: []\n"},
		{"missing version", "updates: []\n"},
		{"incomplete update", "version: 1\nupdates:\n  - path: r.txt\n    name: Django\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewParser(strings.NewReader(tt.input)).Parse(); err == nil {
				t.Error("Parse() error = nil, want error")
			}
		})
	}
}
