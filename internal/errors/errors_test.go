package errors

import (
	"fmt"
	"testing"
)

func TestTallyError_Error(t *testing.T) {
	err := &TallyError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "record not found",
	}

	expected := "NOT_FOUND: record not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("token is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "token is required" {
		t.Errorf("Message = %q, want %q", err.Message, "token is required")
	}
}

func TestNewInvalidToken(t *testing.T) {
	err := NewInvalidToken("q")

	if err.Code != ErrInvalidToken {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidToken)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Details["token"] != "q" {
		t.Errorf("Details[token] = %v, want %q", err.Details["token"], "q")
	}
}

func TestNewInvalidSettings(t *testing.T) {
	err := NewInvalidSettings("currency", "BTC", []string{"GHS", "USD"})

	if err.Code != ErrInvalidSettings {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidSettings)
	}
	if err.Status != 422 {
		t.Errorf("Status = %d, want 422", err.Status)
	}
	if err.Details["field"] != "currency" {
		t.Errorf("Details[field] = %v, want %q", err.Details["field"], "currency")
	}
	if allowed, ok := err.Details["allowed"].([]string); !ok || len(allowed) != 2 {
		t.Errorf("Details[allowed] = %v, want 2 entries", err.Details["allowed"])
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("01HX")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["identifier"] != "01HX" {
		t.Errorf("Details[identifier] = %v, want %q", err.Details["identifier"], "01HX")
	}
}

func TestNewCancelled(t *testing.T) {
	err := NewCancelled("export")

	if err.Code != ErrCancelled {
		t.Errorf("Code = %q, want %q", err.Code, ErrCancelled)
	}
	if err.Message != "export cancelled" {
		t.Errorf("Message = %q, want %q", err.Message, "export cancelled")
	}
}

func TestNewInternal(t *testing.T) {
	t.Run("with error", func(t *testing.T) {
		err := NewInternal(fmt.Errorf("database connection failed"))

		if err.Code != ErrInternal {
			t.Errorf("Code = %q, want %q", err.Code, ErrInternal)
		}
		if err.Status != 500 {
			t.Errorf("Status = %d, want 500", err.Status)
		}
		if err.Message != "an internal error occurred" {
			t.Errorf("Message = %q, want %q", err.Message, "an internal error occurred")
		}
		if err.Details["internal_error"] != "database connection failed" {
			t.Errorf("Details[internal_error] = %q, want %q", err.Details["internal_error"], "database connection failed")
		}
	})

	t.Run("with nil", func(t *testing.T) {
		err := NewInternal(nil)

		if err.Message != "an internal error occurred" {
			t.Errorf("Message = %q, want %q", err.Message, "an internal error occurred")
		}
		if err.Details == nil {
			t.Error("Details should not be nil")
		}
	})
}

func TestIs(t *testing.T) {
	t.Run("matching code", func(t *testing.T) {
		if !Is(NewNotFound("x"), ErrNotFound) {
			t.Error("Is() = false, want true")
		}
	})

	t.Run("non-matching code", func(t *testing.T) {
		if Is(NewNotFound("x"), ErrInvalidToken) {
			t.Error("Is() = true, want false")
		}
	})

	t.Run("plain error", func(t *testing.T) {
		if Is(fmt.Errorf("plain error"), ErrNotFound) {
			t.Error("Is() = true, want false for non-TallyError")
		}
	})

	t.Run("wrapped", func(t *testing.T) {
		wrapped := fmt.Errorf("reuse: %w", NewNotFound("x"))
		if !Is(wrapped, ErrNotFound) {
			t.Error("Is() = false, want true for wrapped TallyError")
		}
	})
}
