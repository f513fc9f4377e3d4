package models

import (
	"testing"
)

func TestContactSubmissionValidate(t *testing.T) {
	good := ContactSubmission{
		Name:    "Joanna Doe",
		Email:   "joanna@example.com",
		Message: "I would like to hear more about your services.",
	}
	if errs := good.Validate(); errs != nil {
		t.Errorf("expected valid submission, got %v", errs)
	}

	short := good
	short.Message = "short"
	errs := short.Validate()
	if errs == nil {
		t.Fatal("expected short message to fail validation")
	}
	if errs[0].Field != "message" {
		t.Errorf("expected message field error, got %v", errs)
	}
}

func TestNewsletterSubscriptionValidate(t *testing.T) {
	good := NewsletterSubscription{Email: "x@y.com"}
	if errs := good.Validate(); errs != nil {
		t.Errorf("expected valid subscription, got %v", errs)
	}
	bad := NewsletterSubscription{Email: "not-an-email"}
	if errs := bad.Validate(); errs == nil {
		t.Error("expected invalid address to fail validation")
	}
}

func TestJobApplicationValidate(t *testing.T) {
	good := JobApplication{
		Name:     "Sam Smith",
		Email:    "sam@example.com",
		Position: "software-engineer",
	}
	if errs := good.Validate(); errs != nil {
		t.Errorf("expected valid application, got %v", errs)
	}
	bad := good
	bad.Position = "wizard"
	errs := bad.Validate()
	if errs == nil {
		t.Fatal("expected unknown position to fail validation")
	}
	if errs[0].Field != "position" {
		t.Errorf("expected position field error, got %v", errs)
	}
}
