package api

import (
	"io/ioutil"
	"net/http"
	"time"

	"github.com/brightvale/website-backend/models"
	"github.com/brightvale/website-backend/retry"
	"github.com/brightvale/website-backend/sanitize"
	"github.com/brightvale/website-backend/storage"
)

// Multipart parse ceiling. Larger than the file-size limit on purpose:
// an oversize CV must reach the storage layer's own check so the client
// gets a structured FILE_TOO_LARGE error instead of a dropped connection.
const maxMultipartMemory = 32 << 20

type applicationResult struct {
	ApplicationID int64  `json:"application_id"`
	CVFileName    string `json:"cv_file_name,omitempty"`
}

// application is the handler for /api/job-applications.
//   POST /api/job-applications
//        multipart form: name, email, phone?, position, cover_letter?,
//        cvFile? (PDF/DOC/DOCX, size-capped)
// Ordering matters here: the CV is written to disk before the row is
// created, so a row can never reference a file that doesn't exist. The
// insert is wrapped in a retry because a connection-level failure means
// no row was committed and a re-attempt is safe.
func (api *API) application(r *http.Request) response {
	if r.Method != http.MethodPost {
		return methodNotAllowed("/api/job-applications")
	}
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		if bodyTooLarge(err) {
			return requestTooLarge()
		}
		return badRequest("could not parse multipart form")
	}
	fields := sanitize.StripMap(map[string]string{
		"name":         r.FormValue("name"),
		"phone":        r.FormValue("phone"),
		"position":     r.FormValue("position"),
		"cover_letter": r.FormValue("cover_letter"),
	})
	application := models.JobApplication{
		Name:        fields["name"],
		Email:       sanitize.NormalizeEmail(r.FormValue("email")),
		Phone:       fields["phone"],
		Position:    fields["position"],
		CoverLetter: fields["cover_letter"],
		Timestamp:   time.Now(),
	}
	if errs := application.Validate(); errs != nil {
		return response{
			StatusCode: http.StatusBadRequest,
			Message:    errs.Error(),
			Response:   errs,
		}
	}

	upload, hasUpload, errResponse := readUpload(r)
	if errResponse.StatusCode != 0 {
		return errResponse
	}
	var stored storage.StoredFile
	if hasUpload {
		var err error
		stored, err = api.Files.Save(upload)
		if err != nil {
			if storage.IsInvalidFile(err) {
				invalid := err.(storage.InvalidFileError)
				return response{
					StatusCode: http.StatusBadRequest,
					Message:    invalid.Message,
					Response:   map[string]string{"code": invalid.Code},
				}
			}
			return serverError("could not store CV file: %v", err)
		}
		application.CVFileName = stored.FileName
	}

	var id int64
	err := retry.Do("job application insert", func() error {
		var insertErr error
		id, insertErr = api.Database.PutJobApplication(application)
		return insertErr
	}, retry.DefaultOptions)
	if err != nil {
		if hasUpload {
			// The row never landed, so the file is an orphan; clean it
			// up now rather than waiting for the out-of-band sweep.
			api.Files.Delete(stored.FileName)
		}
		return serverError("could not store application: %v", err)
	}
	application.ID = id

	api.notify("application ops", func() error {
		return api.Emailer.SendApplicationNotification(&application)
	})
	api.notify("application confirmation", func() error {
		return api.Emailer.SendApplicationConfirmation(&application)
	})
	return response{
		StatusCode: http.StatusCreated,
		Response: applicationResult{
			ApplicationID: id,
			CVFileName:    application.CVFileName,
		},
	}
}

// readUpload extracts the optional CV from the multipart form. The
// returned response has a zero StatusCode when there was no error.
func readUpload(r *http.Request) (storage.File, bool, response) {
	file, header, err := r.FormFile("cvFile")
	if err == http.ErrMissingFile {
		return storage.File{}, false, response{}
	}
	if err != nil {
		return storage.File{}, false, badRequest("could not read uploaded file")
	}
	defer file.Close()
	data, err := ioutil.ReadAll(file)
	if err != nil {
		return storage.File{}, false, badRequest("could not read uploaded file")
	}
	return storage.File{
		Data:         data,
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
	}, true, response{}
}
