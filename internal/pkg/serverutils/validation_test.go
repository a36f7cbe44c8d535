// FILE: internal/pkg/serverutils/validation_test.go
package serverutils

import (
	"strings"
	"testing"
)

type sampleRequest struct {
	Message string `validate:"required"`
	TopK    int    `validate:"omitempty,min=1,max=50"`
}

func TestValidateRequestAcceptsValidStruct(t *testing.T) {
	err := ValidateRequest(sampleRequest{Message: "hello", TopK: 10})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateRequestReportsMissingField(t *testing.T) {
	err := ValidateRequest(sampleRequest{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "Message") {
		t.Fatalf("expected error to name the field, got %q", err.Error())
	}
}

func TestValidateRequestReportsRangeViolation(t *testing.T) {
	err := ValidateRequest(sampleRequest{Message: "hello", TopK: 100})
	if err == nil {
		t.Fatal("expected validation error for out of range value")
	}
	if !strings.Contains(err.Error(), "max") {
		t.Fatalf("expected error to name the rule, got %q", err.Error())
	}
}
