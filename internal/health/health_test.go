package health

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

var (
	okPing   = pingFunc(func(ctx context.Context) error { return nil })
	downPing = pingFunc(func(ctx context.Context) error { return errors.New("connection refused") })
)

func TestCheckAllHealthy(t *testing.T) {
	report := New(okPing, okPing).Check(context.Background())

	if !report.OK || !report.Postgres || !report.Mongo {
		t.Errorf("Expected a healthy report, got %+v", report)
	}
	if report.Errors != nil {
		t.Errorf("Expected no errors map on success, got %v", report.Errors)
	}

	// The error detail must be absent from the JSON, never empty-but-present
	body, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(body), "errors") {
		t.Errorf("Expected errors key to be omitted, got %s", body)
	}
}

func TestCheckSingleStoreDown(t *testing.T) {
	report := New(downPing, okPing).Check(context.Background())

	if report.OK {
		t.Error("Expected composite failure when one store is down")
	}
	if report.Postgres || !report.Mongo {
		t.Errorf("Expected only postgres down, got %+v", report)
	}
	if len(report.Errors) != 1 {
		t.Fatalf("Expected exactly one error entry, got %v", report.Errors)
	}
	if _, ok := report.Errors["postgres"]; !ok {
		t.Errorf("Expected the failing store keyed by name, got %v", report.Errors)
	}
}

func TestCheckBothStoresDown(t *testing.T) {
	report := New(downPing, downPing).Check(context.Background())

	if report.OK || report.Postgres || report.Mongo {
		t.Errorf("Expected both stores reported down, got %+v", report)
	}
	if len(report.Errors) != 2 {
		t.Errorf("Expected two error entries, got %v", report.Errors)
	}
}
