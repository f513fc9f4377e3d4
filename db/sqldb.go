package db

import (
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"time"

	// Imports postgresql driver for database/sql
	_ "github.com/lib/pq"
	"gopkg.in/gorp.v2"

	"github.com/brightvale/website-backend/models"
)

// Connection pool bounds. Callers that can't get a connection fail fast
// rather than queueing behind an unbounded backlog.
const (
	maxOpenConns    = 10
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
)

// SQLDatabase is a Database backed by postgresql.
type SQLDatabase struct {
	cfg  Config
	conn *gorp.DbMap
}

func getConnectionString(cfg Config) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		url.PathEscape(cfg.DbUsername),
		url.PathEscape(cfg.DbPass),
		url.PathEscape(cfg.DbHost),
		url.PathEscape(cfg.DbName))
}

// InitSQLDatabase creates a DB connection based on information in a
// Config, and returns a pointer to the resulting SQLDatabase object.
// If connection setup fails, returns an error.
func InitSQLDatabase(cfg Config) (*SQLDatabase, error) {
	connectionString := getConnectionString(cfg)
	log.Printf("Connecting to Postgres DB ...")
	conn, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(maxOpenConns)
	conn.SetMaxIdleConns(maxIdleConns)
	conn.SetConnMaxLifetime(connMaxLifetime)
	dbmap := &gorp.DbMap{Db: conn, Dialect: gorp.PostgresDialect{}}
	dbmap.AddTableWithName(models.ContactSubmission{}, "contact_submissions").SetKeys(true, "ID")
	dbmap.AddTableWithName(models.NewsletterSubscription{}, "newsletter_subscriptions").SetKeys(true, "ID")
	dbmap.AddTableWithName(models.JobApplication{}, "job_applications").SetKeys(true, "ID")
	return &SQLDatabase{cfg: cfg, conn: dbmap}, nil
}

// Ping probes the underlying connection. Wrapped in a retry at process
// start so a db that's still coming up doesn't kill the service.
func (db *SQLDatabase) Ping() error {
	return db.conn.Db.Ping()
}

// PutContactSubmission inserts a contact submission and returns its id.
func (db *SQLDatabase) PutContactSubmission(submission models.ContactSubmission) (int64, error) {
	var id int64
	err := db.conn.QueryRow(
		`INSERT INTO contact_submissions(name, email, phone, company, message, is_processed, timestamp)
		 VALUES($1, $2, $3, $4, $5, FALSE, $6) RETURNING id`,
		submission.Name, submission.Email, submission.Phone, submission.Company,
		submission.Message, submission.Timestamp).Scan(&id)
	return id, err
}

// GetNewsletterSubscription fetches a subscription row by its normalized
// e-mail address. The boolean reports whether a row exists.
func (db *SQLDatabase) GetNewsletterSubscription(email string) (models.NewsletterSubscription, bool, error) {
	var subscription models.NewsletterSubscription
	err := db.conn.SelectOne(&subscription,
		"SELECT * FROM newsletter_subscriptions WHERE email=$1", email)
	if err == sql.ErrNoRows {
		return subscription, false, nil
	}
	if err != nil {
		return subscription, false, err
	}
	return subscription, true, nil
}

// PutNewsletterSubscription subscribes an address, deduping on the
// e-mail natural key rather than relying on a unique-constraint failure:
// an active subscription is a no-op, an inactive one is reactivated in
// place, and only a missing one inserts a new row.
func (db *SQLDatabase) PutNewsletterSubscription(email string) (int64, bool, error) {
	existing, found, err := db.GetNewsletterSubscription(email)
	if err != nil {
		return 0, false, err
	}
	if found {
		if !existing.Active {
			_, err = db.conn.Exec(
				"UPDATE newsletter_subscriptions SET is_active=TRUE WHERE id=$1", existing.ID)
		}
		return existing.ID, false, err
	}
	var id int64
	err = db.conn.QueryRow(
		`INSERT INTO newsletter_subscriptions(email, is_active, timestamp)
		 VALUES($1, TRUE, $2) RETURNING id`,
		email, time.Now()).Scan(&id)
	return id, true, err
}

// RemoveNewsletterSubscription deactivates a subscription. The row stays
// for auditability; nothing in this service deletes submissions.
func (db *SQLDatabase) RemoveNewsletterSubscription(email string) error {
	result, err := db.conn.Exec(
		"UPDATE newsletter_subscriptions SET is_active=FALSE WHERE email=$1 AND is_active=TRUE",
		email)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("no active subscription for %s", email)
	}
	return nil
}

// PutJobApplication inserts a job application and returns its id. The
// caller stores any CV file first, so CVFileName always references a
// file that exists on disk.
func (db *SQLDatabase) PutJobApplication(application models.JobApplication) (int64, error) {
	var id int64
	err := db.conn.QueryRow(
		`INSERT INTO job_applications(name, email, phone, position, cover_letter, cv_file_name, is_processed, timestamp)
		 VALUES($1, $2, $3, $4, $5, $6, FALSE, $7) RETURNING id`,
		application.Name, application.Email, application.Phone, application.Position,
		application.CoverLetter, application.CVFileName, application.Timestamp).Scan(&id)
	return id, err
}

// CreateTablesIfNotExists sets up the schema on a fresh database.
func (db *SQLDatabase) CreateTablesIfNotExists() error {
	return db.conn.CreateTablesIfNotExists()
}

func tryExec(database *SQLDatabase, commands []string) error {
	for _, command := range commands {
		if _, err := database.conn.Exec(command); err != nil {
			return fmt.Errorf("command failed: %s\nwith error: %v",
				command, err.Error())
		}
	}
	return nil
}

// ClearTables nukes all the tables. ** Should only be used during testing **
func (db *SQLDatabase) ClearTables() error {
	return tryExec(db, []string{
		"DELETE FROM contact_submissions",
		"DELETE FROM newsletter_subscriptions",
		"DELETE FROM job_applications",
		"ALTER SEQUENCE contact_submissions_id_seq RESTART WITH 1",
		"ALTER SEQUENCE newsletter_subscriptions_id_seq RESTART WITH 1",
		"ALTER SEQUENCE job_applications_id_seq RESTART WITH 1",
	})
}
