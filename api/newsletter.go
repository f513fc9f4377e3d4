package api

import (
	"encoding/json"
	"net/http"

	"github.com/brightvale/website-backend/models"
	"github.com/brightvale/website-backend/sanitize"
)

type newsletterRequest struct {
	Email string `json:"email"`
}

type subscriptionResult struct {
	SubscriptionID int64 `json:"subscription_id"`
}

func decodeNewsletterRequest(r *http.Request) (models.NewsletterSubscription, response, bool) {
	var req newsletterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if bodyTooLarge(err) {
			return models.NewsletterSubscription{}, requestTooLarge(), false
		}
		return models.NewsletterSubscription{}, badRequest("invalid JSON body"), false
	}
	subscription := models.NewsletterSubscription{
		Email: sanitize.NormalizeEmail(req.Email),
	}
	if errs := subscription.Validate(); errs != nil {
		return subscription, response{
			StatusCode: http.StatusBadRequest,
			Message:    errs.Error(),
			Response:   errs,
		}, false
	}
	return subscription, response{}, true
}

// subscribe is the handler for /api/newsletter/subscribe.
//   POST /api/newsletter/subscribe
//        {email}
// Idempotent by normalized address: an active subscription returns 200
// without touching the row, an inactive one is reactivated in place, and
// only a genuinely new address inserts a row (201).
func (api *API) subscribe(r *http.Request) response {
	if r.Method != http.MethodPost {
		return methodNotAllowed("/api/newsletter/subscribe")
	}
	subscription, errResponse, ok := decodeNewsletterRequest(r)
	if !ok {
		return errResponse
	}
	id, created, err := api.Database.PutNewsletterSubscription(subscription.Email)
	if err != nil {
		return serverError("could not store subscription: %v", err)
	}
	if !created {
		return response{
			StatusCode: http.StatusOK,
			Message:    "already subscribed",
			Response:   subscriptionResult{SubscriptionID: id},
		}
	}
	api.notify("subscription welcome", func() error {
		return api.Emailer.SendSubscriptionWelcome(subscription.Email)
	})
	return response{
		StatusCode: http.StatusCreated,
		Response:   subscriptionResult{SubscriptionID: id},
	}
}

// unsubscribe is the handler for /api/newsletter/unsubscribe.
//   POST /api/newsletter/unsubscribe
//        {email}
// Deactivates the subscription in place; the row stays for audit.
func (api *API) unsubscribe(r *http.Request) response {
	if r.Method != http.MethodPost {
		return methodNotAllowed("/api/newsletter/unsubscribe")
	}
	subscription, errResponse, ok := decodeNewsletterRequest(r)
	if !ok {
		return errResponse
	}
	if err := api.Database.RemoveNewsletterSubscription(subscription.Email); err != nil {
		return badRequest("you're not subscribed")
	}
	return response{
		StatusCode: http.StatusOK,
		Message:    "unsubscribed",
	}
}
