package httpx

import (
	"strings"
	"testing"
	"time"
)

type testReview struct {
	Rating  int    `validate:"required,min=1,max=5"`
	Comment string `validate:"max=10"`
	Year    int    `validate:"required,pubyear"`
}

func TestValidateStruct_ValidInput(t *testing.T) {
	errs := ValidateStruct(testReview{Rating: 4, Comment: "fine", Year: 1999})
	if len(errs) != 0 {
		t.Errorf("Expected no validation errors, got %v", errs)
	}
}

func TestValidateStruct_Messages(t *testing.T) {
	errs := ValidateStruct(testReview{Rating: 9, Comment: "far too long comment", Year: time.Now().Year() + 1})
	if len(errs) != 3 {
		t.Fatalf("Expected 3 validation errors, got %d: %v", len(errs), errs)
	}

	byField := map[string]string{}
	for _, e := range errs {
		byField[e.Field] = e.Message
	}
	if !strings.Contains(byField["rating"], "at most 5") {
		t.Errorf("unexpected rating message %q", byField["rating"])
	}
	if !strings.Contains(byField["comment"], "at most 10 characters") {
		t.Errorf("unexpected comment message %q", byField["comment"])
	}
	if !strings.Contains(byField["year"], "valid year") {
		t.Errorf("unexpected year message %q", byField["year"])
	}
}

func TestValidateStruct_YearLowerBound(t *testing.T) {
	errs := ValidateStruct(testReview{Rating: 1, Year: 999})
	if len(errs) != 1 || errs[0].Field != "year" {
		t.Errorf("Expected a single year error, got %v", errs)
	}
}
