package db

import (
	"testing"

	"github.com/brightvale/website-backend/models"
)

func TestPutNewsletterSubscriptionIdempotent(t *testing.T) {
	database := InitMemDatabase()

	id1, created, err := database.PutNewsletterSubscription("x@y.com")
	if err != nil {
		t.Fatalf("PutNewsletterSubscription failed: %v", err)
	}
	if !created {
		t.Errorf("first subscribe should create a row")
	}

	id2, created, err := database.PutNewsletterSubscription("x@y.com")
	if err != nil {
		t.Fatalf("PutNewsletterSubscription failed: %v", err)
	}
	if created {
		t.Errorf("second subscribe should not create a row")
	}
	if id1 != id2 {
		t.Errorf("expected the same row id, got %d and %d", id1, id2)
	}
	if database.CountSubscriptions() != 1 {
		t.Errorf("expected exactly one row, got %d", database.CountSubscriptions())
	}
}

func TestPutNewsletterSubscriptionReactivates(t *testing.T) {
	database := InitMemDatabase()

	id1, _, err := database.PutNewsletterSubscription("x@y.com")
	if err != nil {
		t.Fatal(err)
	}
	if err := database.RemoveNewsletterSubscription("x@y.com"); err != nil {
		t.Fatalf("RemoveNewsletterSubscription failed: %v", err)
	}
	subscription, found, _ := database.GetNewsletterSubscription("x@y.com")
	if !found || subscription.Active {
		t.Fatalf("expected an inactive row after unsubscribe, got %+v", subscription)
	}

	id2, created, err := database.PutNewsletterSubscription("x@y.com")
	if err != nil {
		t.Fatal(err)
	}
	if created || id1 != id2 {
		t.Errorf("resubscribe should reactivate row %d in place, got id %d created=%v",
			id1, id2, created)
	}
	subscription, _, _ = database.GetNewsletterSubscription("x@y.com")
	if !subscription.Active {
		t.Errorf("expected subscription to be active again")
	}
}

func TestRemoveMissingSubscription(t *testing.T) {
	database := InitMemDatabase()
	if err := database.RemoveNewsletterSubscription("ghost@y.com"); err == nil {
		t.Errorf("expected an error unsubscribing an unknown address")
	}
}

func TestPutContactSubmissionAssignsIDs(t *testing.T) {
	database := InitMemDatabase()
	first, err := database.PutContactSubmission(models.ContactSubmission{
		Name: "Jo", Email: "a@b.com", Message: "hello there, world"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := database.PutContactSubmission(models.ContactSubmission{
		Name: "Sam", Email: "c@d.com", Message: "hello again, world"})
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Errorf("expected distinct ids, got %d twice", first)
	}
	stored, ok := database.GetContactSubmission(first)
	if !ok || stored.Name != "Jo" {
		t.Errorf("expected to read back the stored submission, got %+v", stored)
	}
}
