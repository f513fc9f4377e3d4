package email

import (
	"fmt"

	"github.com/brightvale/website-backend/models"
	"github.com/brightvale/website-backend/sanitize"
)

// Every user-supplied value is passed through sanitize.EmailContent
// before interpolation, so a crafted field can't smuggle headers or
// extra content into outbound mail.

const contactNotificationTemplate = `A new contact form submission arrived.

Name     %s
Email    %s
Phone    %s
Company  %s

Message
-------
%s

Submission id %d.
`

const contactConfirmationTemplate = `Hi %s,

Thanks for getting in touch! We received your message and someone from
our team will get back to you within two business days.

%s
`

const subscriptionWelcomeTemplate = `Welcome aboard!

You're now subscribed to our newsletter. Expect an update about once a
month, and no spam ever.

You can unsubscribe at any time at %s/newsletter/unsubscribe.
`

const applicationNotificationTemplate = `A new job application arrived.

Name      %s
Email     %s
Phone     %s
Position  %s
CV file   %s

Cover letter
------------
%s

Application id %d.
`

const applicationConfirmationTemplate = `Hi %s,

Thank you for applying for the %s position. Our hiring team reviews
every application and will reach out if there's a match.

%s
`

func contactNotificationText(submission *models.ContactSubmission) string {
	return fmt.Sprintf(contactNotificationTemplate,
		sanitize.EmailContent(submission.Name),
		sanitize.EmailContent(submission.Email),
		sanitize.EmailContent(submission.Phone),
		sanitize.EmailContent(submission.Company),
		sanitize.EmailContent(submission.Message),
		submission.ID)
}

func contactConfirmationText(submission *models.ContactSubmission, website string) string {
	return fmt.Sprintf(contactConfirmationTemplate,
		sanitize.EmailContent(submission.Name), website)
}

func subscriptionWelcomeText(website string) string {
	return fmt.Sprintf(subscriptionWelcomeTemplate, website)
}

func applicationNotificationText(application *models.JobApplication) string {
	cvFile := application.CVFileName
	if cvFile == "" {
		cvFile = "(none)"
	}
	return fmt.Sprintf(applicationNotificationTemplate,
		sanitize.EmailContent(application.Name),
		sanitize.EmailContent(application.Email),
		sanitize.EmailContent(application.Phone),
		sanitize.EmailContent(application.Position),
		cvFile,
		sanitize.EmailContent(application.CoverLetter),
		application.ID)
}

func applicationConfirmationText(application *models.JobApplication, website string) string {
	return fmt.Sprintf(applicationConfirmationTemplate,
		sanitize.EmailContent(application.Name),
		sanitize.EmailContent(application.Position),
		website)
}
