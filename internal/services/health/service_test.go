package health

import (
	"context"
	"errors"
	"testing"
)

func TestStatusWithoutChecks(t *testing.T) {
	if got := NewService().Status(context.Background()); !got.OK {
		t.Fatalf("expected ok, got %+v", got)
	}
}

func TestStatusReportsFailingCheck(t *testing.T) {
	svc := NewService()
	svc.Register("postgres", func(context.Context) error { return nil })
	svc.Register("redis", func(context.Context) error { return errors.New("connection refused") })
	svc.Register("ignored", nil)

	got := svc.Status(context.Background())
	if got.OK {
		t.Fatalf("expected failure, got %+v", got)
	}
	if got.Checks["postgres"] != "ok" || got.Checks["redis"] != "connection refused" {
		t.Fatalf("unexpected checks %+v", got.Checks)
	}
	if names := svc.Names(); len(names) != 2 || names[0] != "postgres" {
		t.Fatalf("unexpected names %v", names)
	}
}
