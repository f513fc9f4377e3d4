package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	raven "github.com/getsentry/raven-go"

	"github.com/brightvale/website-backend/db"
	"github.com/brightvale/website-backend/models"
	"github.com/brightvale/website-backend/storage"
)

////////////////////////////////
//  *****   REST API   *****  //
////////////////////////////////

// API is the HTTP API that this service provides.
// All requests respond with a response JSON, with fields:
// {
//     status_code // HTTP status code of request
//     message // Any error message accompanying the status_code. If 2xx, empty.
//     response // Response data (as JSON) from this request.
// }
type API struct {
	Database db.Database
	Emailer  EmailSender
	Files    storage.FileStore
}

// EmailSender interface wraps a back-end that can send e-mails. Every
// method here is best-effort from the pipeline's point of view: the
// submission is already durable when these run.
type EmailSender interface {
	SendContactNotification(*models.ContactSubmission) error
	SendContactConfirmation(*models.ContactSubmission) error
	SendSubscriptionWelcome(address string) error
	SendApplicationNotification(*models.JobApplication) error
	SendApplicationConfirmation(*models.JobApplication) error
}

type response struct {
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Response   interface{} `json:"response"`
}

type apiHandler func(r *http.Request) response

// Ceiling for the JSON endpoints. The largest legitimate field is the
// 5000-character message, so 64 KiB leaves plenty of headroom.
const maxJSONBody = 64 << 10

// wrapper bounds the request body before the handler can buffer any of
// it, so an oversize request fails at the read instead of exhausting
// memory.
func (api *API) wrapper(handler apiHandler, bodyLimit int64) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
		response := handler(r)
		if response.StatusCode == http.StatusInternalServerError {
			packet := raven.NewPacket(response.Message, raven.NewHttp(r))
			raven.Capture(packet, nil)
		}
		writeJSON(w, response)
	}
}

// bodyTooLarge reports whether err came from the MaxBytesReader limit.
func bodyTooLarge(err error) bool {
	return err != nil && strings.Contains(err.Error(), "request body too large")
}

// notify runs one e-mail dispatch, logging and reporting any failure
// without letting it reach the caller. The two notifications for a
// submission are dispatched independently: a failed ops mail doesn't
// stop the confirmation mail.
func (api *API) notify(description string, send func() error) {
	if err := send(); err != nil {
		log.Printf("notification failure (%s): %v", description, err)
		raven.CaptureError(err, map[string]string{"notification": description})
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// RegisterHandlers binds API functions to the given http server, and
// returns the resulting handler. Each submission endpoint carries its
// own throttle policy, scaled to how costly the action is: the contact
// and job-application forms trigger two outbound e-mails each (the
// latter a file write too), unsubscribes are nearly free and shouldn't
// be blocked for legitimate opt-outs.
func (api *API) RegisterHandlers(mux *http.ServeMux) http.Handler {
	// Factor-two headroom over the file cap: a CV just over the limit
	// still reaches the storage check and gets the structured rejection,
	// while a grossly oversized body is cut off at the read.
	uploadBodyLimit := 2 * api.Files.MaxSize()
	mux.Handle("/api/contact",
		throttleHandler(5*time.Minute, 3, http.HandlerFunc(api.wrapper(api.contact, maxJSONBody))))
	mux.Handle("/api/newsletter/subscribe",
		throttleHandler(15*time.Minute, 5, http.HandlerFunc(api.wrapper(api.subscribe, maxJSONBody))))
	mux.Handle("/api/newsletter/unsubscribe",
		throttleHandler(5*time.Minute, 10, http.HandlerFunc(api.wrapper(api.unsubscribe, maxJSONBody))))
	mux.Handle("/api/job-applications",
		throttleHandler(time.Hour, 3, http.HandlerFunc(api.wrapper(api.application, uploadBodyLimit))))
	mux.HandleFunc("/api/health", healthHandler)
	return middleware(mux)
}

// Writes apiResponse as a JSON object to http.ResponseWriter w. If an
// error occurs, writes http.StatusInternalServerError to w.
func writeJSON(w http.ResponseWriter, apiResponse response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(apiResponse.StatusCode)
	b, err := json.MarshalIndent(apiResponse, "", "  ")
	if err != nil {
		msg := fmt.Sprintf("Internal error: could not format JSON. (%s)\n", err)
		http.Error(w, msg, http.StatusInternalServerError)
		return
	}
	fmt.Fprintf(w, "%s\n", b)
}

func badRequest(format string, a ...interface{}) response {
	return response{
		StatusCode: http.StatusBadRequest,
		Message:    fmt.Sprintf(format, a...),
	}
}

func serverError(format string, a ...interface{}) response {
	return response{
		StatusCode: http.StatusInternalServerError,
		Message:    fmt.Sprintf(format, a...),
	}
}

func methodNotAllowed(path string) response {
	return response{
		StatusCode: http.StatusMethodNotAllowed,
		Message:    fmt.Sprintf("%s only accepts POST requests", path),
	}
}

func requestTooLarge() response {
	return response{
		StatusCode: http.StatusRequestEntityTooLarge,
		Message:    "request body too large",
	}
}
