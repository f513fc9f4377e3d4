package db

import (
	"fmt"
	"sync"
	"time"

	"github.com/brightvale/website-backend/models"
)

// MemDatabase is an in-memory Database for testing. The mutex matters:
// httptest drives handlers from parallel goroutines, unlike the
// cooperative single-request model the production pool sees.
type MemDatabase struct {
	mu            sync.Mutex
	nextID        int64
	contacts      map[int64]models.ContactSubmission
	subscriptions map[string]models.NewsletterSubscription
	applications  map[int64]models.JobApplication
}

// InitMemDatabase returns an empty in-memory database.
func InitMemDatabase() *MemDatabase {
	return &MemDatabase{
		nextID:        1,
		contacts:      make(map[int64]models.ContactSubmission),
		subscriptions: make(map[string]models.NewsletterSubscription),
		applications:  make(map[int64]models.JobApplication),
	}
}

func (db *MemDatabase) takeID() int64 {
	id := db.nextID
	db.nextID++
	return id
}

// Ping always succeeds.
func (db *MemDatabase) Ping() error {
	return nil
}

// PutContactSubmission stores a contact submission.
func (db *MemDatabase) PutContactSubmission(submission models.ContactSubmission) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	submission.ID = db.takeID()
	db.contacts[submission.ID] = submission
	return submission.ID, nil
}

// GetNewsletterSubscription fetches a subscription by address.
func (db *MemDatabase) GetNewsletterSubscription(email string) (models.NewsletterSubscription, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	subscription, ok := db.subscriptions[email]
	return subscription, ok, nil
}

// PutNewsletterSubscription mirrors the SQL implementation's
// natural-key dedupe semantics.
func (db *MemDatabase) PutNewsletterSubscription(email string) (int64, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if existing, ok := db.subscriptions[email]; ok {
		existing.Active = true
		db.subscriptions[email] = existing
		return existing.ID, false, nil
	}
	subscription := models.NewsletterSubscription{
		ID:        db.takeID(),
		Email:     email,
		Active:    true,
		Timestamp: time.Now(),
	}
	db.subscriptions[email] = subscription
	return subscription.ID, true, nil
}

// RemoveNewsletterSubscription deactivates a subscription.
func (db *MemDatabase) RemoveNewsletterSubscription(email string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	subscription, ok := db.subscriptions[email]
	if !ok || !subscription.Active {
		return fmt.Errorf("no active subscription for %s", email)
	}
	subscription.Active = false
	db.subscriptions[email] = subscription
	return nil
}

// PutJobApplication stores a job application.
func (db *MemDatabase) PutJobApplication(application models.JobApplication) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	application.ID = db.takeID()
	db.applications[application.ID] = application
	return application.ID, nil
}

// CountSubscriptions reports how many subscription rows exist, for tests
// asserting idempotence.
func (db *MemDatabase) CountSubscriptions() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.subscriptions)
}

// CountApplications reports how many application rows exist.
func (db *MemDatabase) CountApplications() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.applications)
}

// GetContactSubmission fetches a stored contact submission by id.
func (db *MemDatabase) GetContactSubmission(id int64) (models.ContactSubmission, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	submission, ok := db.contacts[id]
	return submission, ok
}

// GetJobApplication fetches a stored application by id.
func (db *MemDatabase) GetJobApplication(id int64) (models.JobApplication, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	application, ok := db.applications[id]
	return application, ok
}

// ClearTables resets all state.
func (db *MemDatabase) ClearTables() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.nextID = 1
	db.contacts = make(map[int64]models.ContactSubmission)
	db.subscriptions = make(map[string]models.NewsletterSubscription)
	db.applications = make(map[int64]models.JobApplication)
	return nil
}
