package patch

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/model"
)

func baseDocument() model.Document {
	return model.Document{
		Contact: model.Contact{Name: "Dana Levi", Email: "dana@example.com"},
		Summary: "Backend engineer.",
		Skills:  model.Skills{Technical: []string{"Go", "PostgreSQL"}},
		Experience: []model.Experience{
			{Title: "Engineer", Company: "Acme", Achievements: []string{"Shipped billing v2"}},
		},
	}
}

func TestSetFieldValueLeavesOriginalUntouched(t *testing.T) {
	doc := baseDocument()
	updated, err := SetFieldValue(doc, "experience[0].achievements[0]", "Shipped billing v3")
	if err != nil {
		t.Fatalf("SetFieldValue: %v", err)
	}
	if doc.Experience[0].Achievements[0] != "Shipped billing v2" {
		t.Fatalf("original document mutated: %q", doc.Experience[0].Achievements[0])
	}
	if updated.Experience[0].Achievements[0] != "Shipped billing v3" {
		t.Fatalf("expected updated achievement, got %q", updated.Experience[0].Achievements[0])
	}
}

func TestSetAppendsAtLength(t *testing.T) {
	updated, err := SetFieldValue(baseDocument(), "experience[0].achievements[1]", "Mentored two engineers")
	if err != nil {
		t.Fatalf("SetFieldValue: %v", err)
	}
	if got := updated.Experience[0].Achievements; len(got) != 2 || got[1] != "Mentored two engineers" {
		t.Fatalf("expected appended achievement, got %v", got)
	}
}

func TestSetRejectsOutOfRangeIndex(t *testing.T) {
	_, err := SetFieldValue(baseDocument(), "experience[0].achievements[5]", "x")
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestSetRejectsUnknownField(t *testing.T) {
	_, err := SetFieldValue(baseDocument(), "hobbies", []string{"chess"})
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestParsePathErrors(t *testing.T) {
	cases := []string{"", "[0]", "skills.", "skills..technical", "experience[x]", "experience[0", "experience[0]title", "skills.tech-nical"}
	for _, path := range cases {
		t.Run(path, func(t *testing.T) {
			if _, err := parsePath(path); !errors.Is(err, ErrInvalidPath) {
				t.Fatalf("expected ErrInvalidPath for %q, got %v", path, err)
			}
		})
	}
}

func TestParsePathRoundTrip(t *testing.T) {
	segs, err := parsePath("experience[0].achievements[12]")
	if err != nil {
		t.Fatalf("parsePath: %v", err)
	}
	if got := joinPath(segs); got != "experience[0].achievements[12]" {
		t.Fatalf("unexpected joined path %q", got)
	}
}

func TestSetIsIdempotent(t *testing.T) {
	p := Patch{Set("summary", "Staff engineer focused on payments.")}
	once, err := Apply(baseDocument(), p)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	twice, err := Apply(once, p)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("applying the same set twice changed the document:\n%+v\n%+v", once, twice)
	}
}

func TestAppendUniqueDeduplicatesCaseInsensitively(t *testing.T) {
	updated, err := Apply(baseDocument(), Patch{AppendUnique("skills.technical", "go", " postgresql ", "Docker", "docker")})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := []string{"Go", "PostgreSQL", "Docker"}
	if !reflect.DeepEqual(updated.Skills.Technical, want) {
		t.Fatalf("expected %v, got %v", want, updated.Skills.Technical)
	}
}

func TestAppendUniqueCreatesMissingList(t *testing.T) {
	updated, err := Apply(baseDocument(), Patch{AppendUnique("skills.soft", "Mentoring")})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !reflect.DeepEqual(updated.Skills.Soft, []string{"Mentoring"}) {
		t.Fatalf("unexpected soft skills %v", updated.Skills.Soft)
	}
}

func TestRemoveShiftsArray(t *testing.T) {
	updated, err := Apply(baseDocument(), Patch{Remove("skills.technical[0]")})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !reflect.DeepEqual(updated.Skills.Technical, []string{"PostgreSQL"}) {
		t.Fatalf("unexpected technical skills %v", updated.Skills.Technical)
	}
	if _, err := Apply(baseDocument(), Patch{Remove("skills.technical[9]")}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestUnknownOpIsRejected(t *testing.T) {
	_, err := Apply(baseDocument(), Patch{{Op: "move", Path: "summary"}})
	if !errors.Is(err, ErrUnknownOp) {
		t.Fatalf("expected ErrUnknownOp, got %v", err)
	}
}

func TestAdditiveOpsProduceNoRemovals(t *testing.T) {
	additive := []Patch{
		{AppendUnique("skills.technical", "Kubernetes")},
		{AppendUnique("skills.technical", "GO")},
		{AppendUnique("certifications", "CKA")},
		{Set("experience[0].achievements[1]", "Led incident reviews")},
		{Set("experience[1]", model.Experience{Title: "Intern", Company: "Beta"})},
	}
	for _, p := range additive {
		t.Run(p[0].Path, func(t *testing.T) {
			doc := baseDocument()
			updated, err := Apply(doc, p)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			entries, err := ComputeDiff(doc, updated, DiffOptions{})
			if err != nil {
				t.Fatalf("ComputeDiff: %v", err)
			}
			for _, e := range entries {
				if e.Type == DiffRemoved {
					t.Fatalf("additive patch produced removal at %s", e.Path)
				}
			}
		})
	}
}

func TestComputeDiffChangedLeafIsRemovedAddedPair(t *testing.T) {
	doc := baseDocument()
	updated, err := SetFieldValue(doc, "summary", "Platform engineer.")
	if err != nil {
		t.Fatalf("SetFieldValue: %v", err)
	}
	entries, err := ComputeDiff(doc, updated, DiffOptions{})
	if err != nil {
		t.Fatalf("ComputeDiff: %v", err)
	}
	want := []DiffEntry{
		{Type: DiffRemoved, Path: "summary", Value: "Backend engineer."},
		{Type: DiffAdded, Path: "summary", Value: "Platform engineer."},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Fatalf("unexpected diff %+v", entries)
	}
}

func TestComputeDiffIncludeUnchanged(t *testing.T) {
	doc := baseDocument()
	entries, err := ComputeDiff(doc, doc, DiffOptions{IncludeUnchanged: true})
	if err != nil {
		t.Fatalf("ComputeDiff: %v", err)
	}
	summary := Summarize(entries)
	if summary.Added != 0 || summary.Removed != 0 || summary.Unchanged == 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Path == entries[i].Path {
			t.Fatalf("duplicate path %s", entries[i].Path)
		}
	}
}

func TestComputeDiffOrdersIndicesNumerically(t *testing.T) {
	doc := baseDocument()
	skills := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		skills = append(skills, string(rune('a'+i)))
	}
	updated, err := SetFieldValue(doc, "skills.technical", skills)
	if err != nil {
		t.Fatalf("SetFieldValue: %v", err)
	}
	entries, err := ComputeDiff(model.Document{}, updated, DiffOptions{})
	if err != nil {
		t.Fatalf("ComputeDiff: %v", err)
	}
	var paths []string
	for _, e := range entries {
		if e.Type == DiffAdded && len(e.Path) > len("skills.technical") && e.Path[:len("skills.technical")] == "skills.technical" {
			paths = append(paths, e.Path)
		}
	}
	if len(paths) != 12 || paths[2] != "skills.technical[2]" || paths[11] != "skills.technical[11]" {
		t.Fatalf("unexpected ordering %v", paths)
	}
}

func TestGet(t *testing.T) {
	doc := baseDocument()
	got, err := Get(doc, "experience[0].achievements[0]")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "Shipped billing v2" {
		t.Fatalf("unexpected value %v", got)
	}
	if _, err := Get(doc, "experience[3].title"); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if got, err := Get(doc, "contact.headline"); err != nil || got != "" {
		t.Fatalf("expected empty headline, got %v (%v)", got, err)
	}
	if _, err := Get(doc, "contact.nickname"); !errors.Is(err, ErrPathNotFound) {
		t.Fatalf("expected ErrPathNotFound, got %v", err)
	}
}
