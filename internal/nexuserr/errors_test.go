package nexuserr

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	err := FileNotFound("src/api.go")
	if got := err.Error(); !strings.Contains(got, "FILE_NOT_FOUND") || !strings.Contains(got, "src/api.go") {
		t.Errorf("Error() = %q", got)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(CodeStorageError, cause, "writing snapshot")

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if got := err.Error(); !strings.Contains(got, "disk full") {
		t.Errorf("Error() = %q, should include the cause", got)
	}
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	inner := InvalidTagFormat("bad")
	outer := fmt.Errorf("adding tags: %w", inner)

	var e *Error
	if !errors.As(outer, &e) {
		t.Fatal("errors.As should unwrap to *Error")
	}
	if e.Code != CodeInvalidTagFormat {
		t.Errorf("code = %s", e.Code)
	}
}

func TestHint(t *testing.T) {
	if hint := InvalidTagFormat("x").Hint(); !strings.Contains(hint, "type:value") {
		t.Errorf("hint = %q", hint)
	}
	// Unknown codes fall back to the internal-error hint.
	if hint := New(Code("BOGUS"), "x").Hint(); hint == "" {
		t.Error("hint should never be empty")
	}
}

func TestFormatResponse(t *testing.T) {
	payload := FormatResponse(RelationNotFound("a.go", "b.go"))

	var body map[string]struct {
		Code       string `json:"code"`
		Message    string `json:"message"`
		Suggestion string `json:"suggestion"`
	}
	if err := json.Unmarshal([]byte(payload), &body); err != nil {
		t.Fatalf("payload is not valid JSON: %v\n%s", err, payload)
	}
	e, ok := body["error"]
	if !ok {
		t.Fatalf("payload missing error key: %s", payload)
	}
	if e.Code != "RELATION_NOT_FOUND" {
		t.Errorf("code = %q", e.Code)
	}
	if !strings.Contains(e.Message, "a.go -> b.go") {
		t.Errorf("message = %q", e.Message)
	}
	if e.Suggestion == "" {
		t.Error("suggestion must not be empty")
	}
}

func TestFormatResponseNonDomainError(t *testing.T) {
	payload := FormatResponse(errors.New("boom"))
	if !strings.Contains(payload, "INTERNAL_ERROR") || !strings.Contains(payload, "boom") {
		t.Errorf("payload = %s", payload)
	}
}

func TestFormatResponseWrappedDomainError(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", TagNotFound("category:api", "a.go"))
	if payload := FormatResponse(wrapped); !strings.Contains(payload, "TAG_NOT_FOUND") {
		t.Errorf("payload = %s", payload)
	}
}
