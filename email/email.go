// Package email composes and sends notification e-mail for submissions.
// Dispatch is best-effort by design: the submission row is already
// committed by the time anything here runs, and no failure in this
// package may surface as a submission failure.
package email

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/brightvale/website-backend/models"
	"github.com/brightvale/website-backend/sanitize"
	"github.com/brightvale/website-backend/util"
)

// Config stores variables needed to submit emails for sending, as well
// as to generate the template text.
type Config struct {
	auth               smtp.Auth
	username           string
	password           string
	submissionHostname string
	port               string
	sender             string
	notifyAddress      string // Internal ops inbox for full submission detail.
	website            string // Needed to generate email template text.
}

// MakeConfigFromEnv initializes our email config object with environment
// variables. SMTP credentials are optional; without them mail is
// submitted unauthenticated, which is what the local smtpd used in tests
// expects.
func MakeConfigFromEnv() (Config, error) {
	varErrs := util.Errors{}
	c := Config{
		username:           util.EnvOrDefault("SMTP_USERNAME", ""),
		password:           util.EnvOrDefault("SMTP_PASSWORD", ""),
		submissionHostname: util.RequireEnv("SMTP_ENDPOINT", &varErrs),
		port:               util.RequireEnv("SMTP_PORT", &varErrs),
		sender:             util.RequireEnv("EMAIL_FROM", &varErrs),
		notifyAddress:      util.RequireEnv("NOTIFY_ADDRESS", &varErrs),
		website:            util.RequireEnv("FRONTEND_WEBSITE_LINK", &varErrs),
	}
	if len(varErrs) > 0 {
		return c, varErrs
	}
	if c.username == "" {
		return c, nil
	}
	log.Printf("Establishing auth connection with SMTP server %s", c.submissionHostname)
	client, err := smtp.Dial(fmt.Sprintf("%s:%s", c.submissionHostname, c.port))
	if err != nil {
		return c, err
	}
	defer client.Close()
	err = client.StartTLS(&tls.Config{ServerName: c.submissionHostname})
	if err != nil {
		return c, fmt.Errorf("SMTP server doesn't support STARTTLS")
	}
	ok, auths := client.Extension("AUTH")
	if !ok {
		return c, fmt.Errorf("remote SMTP server doesn't support any authentication mechanisms")
	}
	if strings.Contains(auths, "PLAIN") {
		c.auth = smtp.PlainAuth("", c.username, c.password, c.submissionHostname)
	} else if strings.Contains(auths, "CRAM-MD5") {
		c.auth = smtp.CRAMMD5Auth(c.username, c.password)
	} else {
		return c, fmt.Errorf("SMTP server doesn't support PLAIN or CRAM-MD5 authentication")
	}
	return c, nil
}

// SendContactNotification mails the full submission detail to the
// internal ops address.
func (c Config) SendContactNotification(submission *models.ContactSubmission) error {
	body := contactNotificationText(submission)
	subject := fmt.Sprintf("New contact form submission from %s",
		sanitize.EmailContent(submission.Name))
	return c.sendEmail(subject, body, c.notifyAddress)
}

// SendContactConfirmation acknowledges receipt to the submitter. The
// body carries no data beyond what the submitter sent themselves.
func (c Config) SendContactConfirmation(submission *models.ContactSubmission) error {
	body := contactConfirmationText(submission, c.website)
	return c.sendEmail("We received your message", body, submission.Email)
}

// SendSubscriptionWelcome greets a new newsletter subscriber.
func (c Config) SendSubscriptionWelcome(address string) error {
	body := subscriptionWelcomeText(c.website)
	return c.sendEmail("Welcome to our newsletter", body, address)
}

// SendApplicationNotification mails the application detail, including
// the stored CV file name, to the internal ops address.
func (c Config) SendApplicationNotification(application *models.JobApplication) error {
	body := applicationNotificationText(application)
	subject := fmt.Sprintf("New job application: %s",
		sanitize.EmailContent(application.Position))
	return c.sendEmail(subject, body, c.notifyAddress)
}

// SendApplicationConfirmation acknowledges receipt to the applicant.
func (c Config) SendApplicationConfirmation(application *models.JobApplication) error {
	body := applicationConfirmationText(application, c.website)
	return c.sendEmail("We received your application", body, application.Email)
}

func (c Config) sendEmail(subject string, body string, address string) error {
	message := fmt.Sprintf("From: %s\nTo: %s\nSubject: %s\n\n%s",
		c.sender, address, subject, body)
	if c.submissionHostname == "" {
		log.Println("Warning: email host not configured, not sending email")
		log.Println(message)
		return nil
	}
	return smtp.SendMail(fmt.Sprintf("%s:%s", c.submissionHostname, c.port),
		c.auth,
		c.sender, []string{address}, []byte(message))
}
