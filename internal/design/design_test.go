package design

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"navy", "#000080"},
		{"  Dark   Blue ", "#00008b"},
		{"#ABC", "#aabbcc"},
		{"#1a2B3c", "#1a2b3c"},
		{"rgb(255, 0, 10)", "#ff000a"},
		{"RGB( 1,2,3 )", "#010203"},
	}
	for _, tc := range cases {
		got, err := ParseColor(tc.in)
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseColor(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseColorRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "bluish", "#12", "#12345g", "rgb(256,0,0)", "rgb(1,2)", "nav y"} {
		if _, err := ParseColor(in); !errors.Is(err, ErrInvalidColor) {
			t.Fatalf("ParseColor(%q) expected ErrInvalidColor, got %v", in, err)
		}
	}
}

func TestParseTarget(t *testing.T) {
	if got, _ := ParseTarget(""); got != TargetPrimary {
		t.Fatalf("empty target should default to primary, got %q", got)
	}
	if got, _ := ParseTarget("Headers"); got != TargetHeadings {
		t.Fatalf("expected headings, got %q", got)
	}
	if _, err := ParseTarget("sidebar"); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
}

func TestAssignmentUndoIsOneStepSwap(t *testing.T) {
	a := NewAssignment("u1")
	a = a.Customize("c1")
	a = a.Customize("c2")

	undone, err := a.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if *undone.CustomizationID != "c1" || *undone.PreviousCustomizationID != "c2" {
		t.Fatalf("unexpected state after undo: %v / %v", *undone.CustomizationID, *undone.PreviousCustomizationID)
	}
	again, err := undone.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if *again.CustomizationID != "c2" {
		t.Fatalf("second undo should swap back, got %v", *again.CustomizationID)
	}

	reverted := again.Revert()
	if reverted.CustomizationID != nil || reverted.PreviousCustomizationID != nil {
		t.Fatalf("revert should clear both pointers")
	}
	if _, err := reverted.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}
}

func TestAssignmentCustomizeDoesNotAlias(t *testing.T) {
	a := NewAssignment("u1").Customize("c1")
	b := a.Customize("c2")
	if *a.CustomizationID != "c1" {
		t.Fatalf("original assignment changed: %v", *a.CustomizationID)
	}
	if *b.PreviousCustomizationID != "c1" {
		t.Fatalf("previous not captured: %v", *b.PreviousCustomizationID)
	}
}

func newTestService() *Service {
	svc := NewService(NewMemoryStore(), nil, nil)
	n := 0
	svc.NewID = func() string {
		n++
		return fmt.Sprintf("c%d", n)
	}
	svc.Now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestServiceCustomizeCustomizeUndo(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.Customize(ctx, "u1", map[string]string{"primary": "navy"})
	if err != nil {
		t.Fatalf("Customize: %v", err)
	}
	if _, err := svc.Customize(ctx, "u1", map[string]string{"accent": "#f00"}); err != nil {
		t.Fatalf("Customize: %v", err)
	}
	undone, err := svc.Undo(ctx, "u1")
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if undone.Customization == nil || undone.Customization.ID != first.Customization.ID {
		t.Fatalf("undo should restore the first customization, got %+v", undone.Customization)
	}
	colors := undone.Colors()
	if colors["primary"] != "#000080" || colors["accent"] != "" {
		t.Fatalf("unexpected colors after undo %v", colors)
	}
	if undone.Assignment.Revision != 3 {
		t.Fatalf("expected revision 3, got %d", undone.Assignment.Revision)
	}
}

func TestServiceCustomizeLayersColors(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	if _, err := svc.Customize(ctx, "u1", map[string]string{"primary": "navy"}); err != nil {
		t.Fatalf("Customize: %v", err)
	}
	state, err := svc.Customize(ctx, "u1", map[string]string{"headers": "rgb(0,0,0)"})
	if err != nil {
		t.Fatalf("Customize: %v", err)
	}
	colors := state.Colors()
	if colors["primary"] != "#000080" || colors["headings"] != "#000000" {
		t.Fatalf("unexpected layered colors %v", colors)
	}
}

func TestServiceRejectsBadInput(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	if _, err := svc.Customize(ctx, "u1", map[string]string{"primary": "blurple"}); !errors.Is(err, ErrInvalidColor) {
		t.Fatalf("expected ErrInvalidColor, got %v", err)
	}
	if _, err := svc.AssignTemplate(ctx, "u1", "baroque"); !errors.Is(err, ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
	if _, err := svc.Undo(ctx, "u1"); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}
}

func TestMemoryStoreRevisionConflict(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	a := NewAssignment("u1")
	if err := store.SaveAssignment(ctx, a, 0); err != nil {
		t.Fatalf("SaveAssignment: %v", err)
	}
	if err := store.SaveAssignment(ctx, a, 0); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestPGStoreSaveAssignmentConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := &PGStore{DB: db}
	id := "c2"
	a := Assignment{UserID: "u1", TemplateID: TemplateModern, CustomizationID: &id, UpdatedAt: time.Now().UTC()}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE design_assignments")).
		WithArgs("u1", TemplateModern, "c2", nil, sqlmock.AnyArg(), int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.SaveAssignment(context.Background(), a, 4); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreLoadAssignmentDefaults(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT user_id, template_id").
		WithArgs("u1").
		WillReturnError(sql.ErrNoRows)

	a, err := (&PGStore{DB: db}).LoadAssignment(context.Background(), "u1")
	if err != nil {
		t.Fatalf("LoadAssignment: %v", err)
	}
	if a.TemplateID != DefaultTemplate || a.Revision != 0 || a.CustomizationID != nil {
		t.Fatalf("unexpected default assignment %+v", a)
	}
}

func TestPGStoreGetCustomization(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	created := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, user_id, template_id, colors").
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "template_id", "colors", "created_at"}).
			AddRow("c1", "u1", TemplateModern, []byte(`{"primary":"#000080"}`), created))

	c, err := (&PGStore{DB: db}).GetCustomization(context.Background(), "c1")
	if err != nil {
		t.Fatalf("GetCustomization: %v", err)
	}
	if c.Colors["primary"] != "#000080" || c.TemplateID != TemplateModern {
		t.Fatalf("unexpected customization %+v", c)
	}
}
