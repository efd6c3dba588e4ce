package uow

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestMapErrorNil(t *testing.T) {
	if MapError("op", nil) != nil {
		t.Fatalf("nil must map to nil")
	}
}

func TestMapErrorSentinels(t *testing.T) {
	cases := []struct {
		err  error
		code ErrorCode
	}{
		{ValidationError("bad input"), CodeValidation},
		{InvariantError("broken rule"), CodeInvariantViolation},
		{ConflictError("stale"), CodeConflict},
		{RetryableError("again"), CodeRetryable},
		{gorm.ErrRecordNotFound, CodeNotFound},
		{context.Canceled, CodeRetryable},
	}
	for _, tc := range cases {
		mapped := MapError("uow.test", tc.err)
		if CodeOf(mapped) != tc.code {
			t.Fatalf("err %v: expected code %s, got %s", tc.err, tc.code, CodeOf(mapped))
		}
		if !errors.Is(mapped, tc.err) {
			t.Fatalf("cause must be preserved for %v", tc.err)
		}
	}
}

func TestMapErrorPostgresCodes(t *testing.T) {
	cases := []struct {
		pg   string
		code ErrorCode
	}{
		{"23505", CodeConflict},
		{"23503", CodePreconditionFailed},
		{"40001", CodeRetryable},
		{"40P01", CodeRetryable},
	}
	for _, tc := range cases {
		pgErr := &pgconn.PgError{Code: tc.pg, Message: "pg failure"}
		mapped := MapError("uow.commit", pgErr)
		if CodeOf(mapped) != tc.code {
			t.Fatalf("pg code %s: expected %s, got %s", tc.pg, tc.code, CodeOf(mapped))
		}
		var cause *pgconn.PgError
		if !errors.As(mapped, &cause) || cause.Code != tc.pg {
			t.Fatalf("pg cause must be reachable for %s", tc.pg)
		}
	}
}

func TestMapErrorAlreadyMapped(t *testing.T) {
	orig := NewError(CodeConflict, "uow.commit", "stale", nil)
	if mapped := MapError("other.op", orig); mapped != orig {
		t.Fatalf("mapped errors must pass through unchanged")
	}
}

func TestMapErrorUnknownIsInternal(t *testing.T) {
	mapped := MapError("uow.commit", errors.New("mystery"))
	if CodeOf(mapped) != CodeInternal {
		t.Fatalf("expected internal, got %s", CodeOf(mapped))
	}
}

func TestErrorMessagePreservesOpAndCode(t *testing.T) {
	err := NewError(CodeConflict, "uow.commit", "record changed", nil)
	want := "uow.commit: record changed (conflict)"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}

func TestIsConflict(t *testing.T) {
	if !IsConflict(MapError("op", ConflictError("stale"))) {
		t.Fatalf("expected conflict detection")
	}
	if IsConflict(MapError("op", ValidationError("nope"))) {
		t.Fatalf("validation is not a conflict")
	}
}
