package validation

import (
	"errors"
	"strings"
	"testing"
)

type form struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"xtream_url" validate:"required,url"`
	Mode string `koanf:"mode" validate:"omitempty,oneof=json console"`
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	err := Struct(form{URL: "not a url", Mode: "xml"})
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %T %v", err, err)
	}
	if len(verr.Fields) != 3 {
		t.Fatalf("want 3 field errors, got %d (%v)", len(verr.Fields), verr)
	}
	msg := verr.Error()
	for _, want := range []string{"name is required", "xtream_url must be a valid URL", "mode must be one of [json console]"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q should contain %q", msg, want)
		}
	}
}

func TestStruct_Valid(t *testing.T) {
	if err := Struct(form{Name: "n", URL: "http://provider.example:8080"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
