package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/brightvale/website-backend/models"
	"github.com/brightvale/website-backend/sanitize"
)

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Message string `json:"message"`
}

type submissionResult struct {
	SubmissionID int64 `json:"submission_id"`
}

// contact is the handler for /api/contact.
//   POST /api/contact
//        {name, email, phone?, company?, message}
//        Stores the submission, then mails ops and the submitter.
// The store write is the success boundary: once the row is committed the
// client gets 201 no matter what the mail provider does.
func (api *API) contact(r *http.Request) response {
	if r.Method != http.MethodPost {
		return methodNotAllowed("/api/contact")
	}
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if bodyTooLarge(err) {
			return requestTooLarge()
		}
		return badRequest("invalid JSON body")
	}
	submission := models.ContactSubmission{
		Name:      sanitize.Strip(req.Name),
		Email:     sanitize.NormalizeEmail(req.Email),
		Phone:     sanitize.Strip(req.Phone),
		Company:   sanitize.Strip(req.Company),
		Message:   sanitize.Strip(req.Message),
		Timestamp: time.Now(),
	}
	if errs := submission.Validate(); errs != nil {
		return response{
			StatusCode: http.StatusBadRequest,
			Message:    errs.Error(),
			Response:   errs,
		}
	}
	id, err := api.Database.PutContactSubmission(submission)
	if err != nil {
		return serverError("could not store submission: %v", err)
	}
	submission.ID = id
	api.notify("contact ops", func() error {
		return api.Emailer.SendContactNotification(&submission)
	})
	api.notify("contact confirmation", func() error {
		return api.Emailer.SendContactConfirmation(&submission)
	})
	return response{
		StatusCode: http.StatusCreated,
		Response:   submissionResult{SubmissionID: id},
	}
}
