package rules

import (
	"context"
	"testing"

	"blog-backend/internal/shared/result"
)

func TestRunAllPass(t *testing.T) {
	var calls []string
	check := func(name string) Check {
		return func(ctx context.Context) result.Result {
			calls = append(calls, name)
			return result.Ok()
		}
	}

	r := Run(context.Background(), check("a"), check("b"), check("c"))
	if !r.Status {
		t.Fatalf("Run = %+v, want success", r)
	}
	if len(calls) != 3 {
		t.Errorf("calls = %v, want all three checks executed", calls)
	}
}

func TestRunShortCircuits(t *testing.T) {
	var calls []string
	pass := func(name string) Check {
		return func(ctx context.Context) result.Result {
			calls = append(calls, name)
			return result.Ok()
		}
	}
	fail := func(name, msg string) Check {
		return func(ctx context.Context) result.Result {
			calls = append(calls, name)
			return result.Fail(msg)
		}
	}

	r := Run(context.Background(), pass("a"), fail("b", "nope"), pass("c"))
	if r.Status {
		t.Fatal("Run should fail when a check fails")
	}
	if r.Message != "nope" {
		t.Errorf("Message = %q, want failure message passed through", r.Message)
	}
	if len(calls) != 2 {
		t.Errorf("calls = %v, want chain to stop at first failure", calls)
	}
}

func TestRunEmpty(t *testing.T) {
	if r := Run(context.Background()); !r.Status {
		t.Errorf("Run() = %+v, want success for empty chain", r)
	}
}
