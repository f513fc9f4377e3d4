// Package models defines the submission records this service stores.
// Each variant is written exactly once by a successful validate-then-store
// pass; after that only the status flag changes, via admin tooling outside
// this service.
package models

import (
	"time"

	"github.com/brightvale/website-backend/validate"
)

// ContactSubmission is one contact-form submission.
type ContactSubmission struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	Company   string    `db:"company" json:"company,omitempty"`
	Message   string    `db:"message" json:"message"`
	Processed bool      `db:"is_processed" json:"is_processed"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

// NewsletterSubscription is one newsletter signup, keyed naturally by
// the normalized e-mail address.
type NewsletterSubscription struct {
	ID        int64     `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Active    bool      `db:"is_active" json:"is_active"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

// JobApplication is one job-form submission, with an optional stored CV
// reference. CVFileName is the generated name under the upload
// directory, never a client-supplied path.
type JobApplication struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Email       string    `db:"email" json:"email"`
	Phone       string    `db:"phone" json:"phone,omitempty"`
	Position    string    `db:"position" json:"position"`
	CoverLetter string    `db:"cover_letter" json:"cover_letter,omitempty"`
	CVFileName  string    `db:"cv_file_name" json:"cv_file_name,omitempty"`
	Processed   bool      `db:"is_processed" json:"is_processed"`
	Timestamp   time.Time `db:"timestamp" json:"timestamp"`
}

// Positions is the fixed set of roles the job form accepts.
var Positions = []string{
	"software-engineer",
	"product-designer",
	"marketing-specialist",
	"sales-manager",
	"project-manager",
	"other",
}

// ContactSchema constrains the contact form.
var ContactSchema = validate.Schema{
	"name":    {Required: true, MinLen: 2, MaxLen: 100},
	"email":   {Required: true, MaxLen: 255, Format: validate.FormatEmail},
	"phone":   {MaxLen: 40},
	"company": {MaxLen: 200},
	"message": {Required: true, MinLen: 10, MaxLen: 5000},
}

// NewsletterSchema constrains subscribe and unsubscribe requests.
var NewsletterSchema = validate.Schema{
	"email": {Required: true, MaxLen: 255, Format: validate.FormatEmail},
}

// ApplicationSchema constrains the job-application form.
var ApplicationSchema = validate.Schema{
	"name":         {Required: true, MinLen: 2, MaxLen: 100},
	"email":        {Required: true, MaxLen: 255, Format: validate.FormatEmail},
	"phone":        {MaxLen: 40},
	"position":     {Required: true, OneOf: Positions},
	"cover_letter": {MaxLen: 5000},
}

// Validate checks the submission against ContactSchema.
func (c *ContactSubmission) Validate() validate.Errors {
	return validate.Check(ContactSchema, map[string]string{
		"name":    c.Name,
		"email":   c.Email,
		"phone":   c.Phone,
		"company": c.Company,
		"message": c.Message,
	})
}

// Validate checks the subscription against NewsletterSchema.
func (n *NewsletterSubscription) Validate() validate.Errors {
	return validate.Check(NewsletterSchema, map[string]string{
		"email": n.Email,
	})
}

// Validate checks the application against ApplicationSchema.
func (j *JobApplication) Validate() validate.Errors {
	return validate.Check(ApplicationSchema, map[string]string{
		"name":         j.Name,
		"email":        j.Email,
		"phone":        j.Phone,
		"position":     j.Position,
		"cover_letter": j.CoverLetter,
	})
}
