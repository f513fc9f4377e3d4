package db

import (
	"flag"
	"os"

	"github.com/brightvale/website-backend/models"
)

// Database is the persistence boundary for the submission pipeline. It
// owns durability of the primary record; everything downstream of a
// successful put (file cleanup, notification e-mail) is best-effort.
type Database interface {
	// PutContactSubmission stores a contact-form submission and returns
	// its new id.
	PutContactSubmission(models.ContactSubmission) (int64, error)
	// PutNewsletterSubscription subscribes an e-mail address,
	// idempotently by normalized address. Returns the row id and whether
	// a new row was created: an existing active subscription is returned
	// as-is, an inactive one is reactivated in place.
	PutNewsletterSubscription(email string) (int64, bool, error)
	// RemoveNewsletterSubscription deactivates a subscription.
	RemoveNewsletterSubscription(email string) error
	// GetNewsletterSubscription fetches a subscription by address.
	GetNewsletterSubscription(email string) (models.NewsletterSubscription, bool, error)
	// PutJobApplication stores a job application and returns its new id.
	PutJobApplication(models.JobApplication) (int64, error)
	// Ping probes connectivity.
	Ping() error
	ClearTables() error
}

// Config is a configuration struct for a Database.
type Config struct {
	URL        string // Full connection string; overrides the parts below.
	DbHost     string
	DbName     string
	DbUsername string
	DbPass     string
}

// Default configuration values. Can be overwritten by env vars of the
// same name.
var configDefaults = map[string]string{
	"DB_HOST":      "localhost",
	"DB_NAME":      "website",
	"DB_USERNAME":  "postgres",
	"DB_PASSWORD":  "postgres",
	"TEST_DB_NAME": "website_test",
}

func getEnvOrDefault(varName string) string {
	envVar := os.Getenv(varName)
	if len(envVar) == 0 {
		envVar = configDefaults[varName]
	}
	return envVar
}

// LoadEnvironmentVariables loads relevant environment variables into a
// Config object. DATABASE_URL, when set, wins over the individual parts.
func LoadEnvironmentVariables() (Config, error) {
	config := Config{
		URL:        os.Getenv("DATABASE_URL"),
		DbHost:     getEnvOrDefault("DB_HOST"),
		DbName:     getEnvOrDefault("DB_NAME"),
		DbUsername: getEnvOrDefault("DB_USERNAME"),
		DbPass:     getEnvOrDefault("DB_PASSWORD"),
	}
	if flag.Lookup("test.v") != nil {
		// Avoid accidentally wiping the default db during tests.
		config.DbName = getEnvOrDefault("TEST_DB_NAME")
		config.URL = ""
	}
	return config, nil
}
