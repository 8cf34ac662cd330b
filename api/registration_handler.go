package api

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/higbec/project-portal-backend/database"
	"github.com/higbec/project-portal-backend/errs"
	"github.com/higbec/project-portal-backend/models"
	"github.com/higbec/project-portal-backend/storage"
	"github.com/higbec/project-portal-backend/validation"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100

	// bulkWorkers bounds the per-id fan-out of bulk operations so a large
	// selection cannot flood the store.
	bulkWorkers = 4

	// maxMultipartMemory caps the in-memory part of multipart parsing;
	// larger files spill to temp storage before validation sees them.
	maxMultipartMemory = 10 << 20
)

type registrationHandler struct {
	responder          Responder
	logger             zerolog.Logger
	registrationRepo   *database.RegistrationRepo
	files              storage.FileStore
	screenshotRequired bool
	displayLocation    *time.Location
}

func newRegistrationHandler(registrationRepo *database.RegistrationRepo, files storage.FileStore, screenshotRequired bool) registrationHandler {
	logger := log.With().Str("handlerName", "registrationHandler").Logger()

	// Registration receipts are shown in IST.
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.UTC
	}

	return registrationHandler{
		responder:          NewResponder(logger),
		logger:             logger,
		registrationRepo:   registrationRepo,
		files:              files,
		screenshotRequired: screenshotRequired,
		displayLocation:    loc,
	}
}

// submitRegistration handles the public intake form. It accepts multipart
// form data (with an optional paymentScreenshot file) or a legacy JSON body.
func (h registrationHandler) submitRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		submission, fileMeta, fileOpen, err := h.parseIntake(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		normalized, vErr := validation.ValidateSubmission(submission)
		if vErr != nil {
			h.responder.WriteError(w, vErr)
			return
		}

		// The screenshot requirement only binds the multipart path; the
		// legacy JSON body cannot carry a file.
		required := h.screenshotRequired && isMultipart(r)
		if vErr := validation.ValidateFile(fileMeta, required); vErr != nil {
			h.responder.WriteError(w, vErr)
			return
		}

		// Fast-path duplicate check; the unique index on email remains the
		// authoritative guard on insert.
		existing, lookupErr := h.registrationRepo.FindByEmail(normalized.Email)
		if lookupErr != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "registration", lookupErr))
			return
		}
		if existing != nil {
			h.responder.WriteError(w, errs.NewDuplicateEmailError())
			return
		}

		reg := models.Registration{
			FullName:         normalized.FullName,
			PhoneNumber:      normalized.PhoneNumber,
			Email:            normalized.Email,
			CollegeName:      normalized.CollegeName,
			Branch:           normalized.Branch,
			Semester:         normalized.Semester,
			BatchType:        normalized.BatchType,
			RegistrationType: normalized.RegistrationType,
			ProjectTitle:     normalized.ProjectTitle,
			GroupMembers:     normalized.GroupMembers,
			Status:           models.StatusPending,
		}

		if fileMeta != nil && fileOpen != nil {
			file, openErr := fileOpen()
			if openErr != nil {
				h.logger.Error().Err(openErr).Msg("failed to open uploaded file")
				h.responder.WriteError(w, errs.NewInternalError("Error reading payment screenshot"))
				return
			}
			defer file.Close()

			uploaded, upErr := h.files.Upload(r.Context(), file, fileMeta.ContentType, fileMeta.OriginalName)
			if upErr != nil {
				h.logger.Error().Err(upErr).Msg("failed to upload payment screenshot")
				h.responder.WriteError(w, errs.NewInternalError("Error uploading payment screenshot to cloud storage"))
				return
			}
			reg.PaymentScreenshotURL = &uploaded.PublicURL
			reg.PaymentScreenshotKey = &uploaded.Key
		}

		if createErr := h.registrationRepo.Create(&reg); createErr != nil {
			// The record never landed, so the uploaded file is an orphan;
			// best-effort cleanup, then surface the storage error.
			if reg.PaymentScreenshotKey != nil {
				if delErr := h.files.Delete(r.Context(), *reg.PaymentScreenshotKey); delErr != nil {
					h.logger.Warn().Err(delErr).Str("key", *reg.PaymentScreenshotKey).Msg("failed to clean up orphaned screenshot")
				}
			}
			h.responder.WriteError(w, wrapDatabaseError("create", "registration", createErr))
			return
		}

		h.logger.Info().Uint("id", reg.ID).Str("projectId", reg.ProjectID).Msg("registration created")

		response := map[string]any{
			"message":            "Registration successful",
			"id":                 reg.ID,
			"projectId":          reg.ProjectID,
			"registrationNumber": fmt.Sprintf("HIGBEC-%06d", reg.ID),
			"registrationDate":   reg.CreatedAt.In(h.displayLocation).Format("02/01/2006, 15:04:05"),
		}
		if reg.PaymentScreenshotURL != nil {
			response["paymentScreenshotUrl"] = *reg.PaymentScreenshotURL
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, response)
	}
}

// parseIntake extracts a submission from either multipart form data or a JSON
// body. The returned open function defers reading the file until validation
// has passed.
func (h registrationHandler) parseIntake(r *http.Request) (validation.Submission, *validation.FileMeta, func() (multipart.File, error), error) {
	if !isMultipart(r) {
		var submission validation.Submission
		if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
			return validation.Submission{}, nil, nil, errs.NewBadRequestError("Malformed request body")
		}
		return submission, nil, nil, nil
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return validation.Submission{}, nil, nil, errs.NewBadRequestError("Malformed multipart form")
	}

	submission := validation.Submission{
		FullName:         r.FormValue("fullName"),
		PhoneNumber:      r.FormValue("phoneNumber"),
		Email:            r.FormValue("email"),
		CollegeName:      r.FormValue("collegeName"),
		Branch:           r.FormValue("branch"),
		Semester:         r.FormValue("semester"),
		BatchType:        r.FormValue("batchType"),
		RegistrationType: r.FormValue("registrationType"),
		ProjectTitle:     r.FormValue("projectTitle"),
	}

	if raw := r.FormValue("groupMembers"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &submission.GroupMembers); err != nil {
			return validation.Submission{}, nil, nil, errs.NewInvalidGroupMembersError("Invalid group members format")
		}
	}

	headers := r.MultipartForm.File["paymentScreenshot"]
	if len(headers) == 0 {
		// No file part; the validator decides whether that is acceptable.
		return submission, nil, nil, nil
	}

	header := headers[0]
	meta := &validation.FileMeta{
		ContentType:  header.Header.Get("Content-Type"),
		Size:         header.Size,
		OriginalName: header.Filename,
	}
	open := func() (multipart.File, error) { return header.Open() }
	return submission, meta, open, nil
}

// listRegistrations returns a filtered, paginated admin listing.
func (h registrationHandler) listRegistrations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		page := parseIntOrDefault(query.Get("page"), 1)
		limit := parseIntOrDefault(query.Get("limit"), defaultPageLimit)

		if page < 1 || limit < 1 || limit > maxPageLimit {
			h.responder.WriteError(w, errs.NewBadRequestError("Invalid pagination parameters"))
			return
		}

		filters := database.Filters{
			Search:           strings.TrimSpace(query.Get("search")),
			Status:           query.Get("status"),
			BatchType:        query.Get("batchType"),
			RegistrationType: query.Get("registrationType"),
			Limit:            limit,
			Offset:           (page - 1) * limit,
		}

		registrations, err := h.registrationRepo.FindWithFilters(filters)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "registrations", err))
			return
		}

		totalCount, err := h.registrationRepo.CountWithFilters(filters)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("count", "registrations", err))
			return
		}

		totalPages := int((totalCount + int64(limit) - 1) / int64(limit))

		h.responder.WriteJSON(w, map[string]any{
			"registrations": registrations,
			"pagination": map[string]any{
				"currentPage": page,
				"totalPages":  totalPages,
				"totalCount":  totalCount,
				"hasNextPage": page < totalPages,
				"hasPrevPage": page > 1,
				"limit":       limit,
			},
		})
	}
}

// getRegistration returns one registration by id.
func (h registrationHandler) getRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := registrationID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		reg, findErr := h.registrationRepo.FindByID(id)
		if findErr != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "registration", findErr))
			return
		}
		if reg == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("Registration not found"))
			return
		}

		h.responder.WriteJSON(w, reg)
	}
}

// updateRegistration applies an allowlisted field update. The common case is
// a bare {"status": ...} from the dashboard; projectTitle and groupMembers
// may ride along, anything else is dropped.
func (h registrationHandler) updateRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := registrationID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var body map[string]json.RawMessage
		if decodeErr := json.NewDecoder(r.Body).Decode(&body); decodeErr != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("Malformed request body"))
			return
		}

		fields := make(map[string]any)

		if raw, ok := body["status"]; ok {
			var status string
			if json.Unmarshal(raw, &status) != nil || !models.IsValidStatus(status) {
				h.responder.WriteError(w, errs.NewBadRequestError("Invalid status. Must be pending, approved, or rejected"))
				return
			}
			fields["status"] = status
		}

		if raw, ok := body["projectTitle"]; ok {
			var title string
			if json.Unmarshal(raw, &title) != nil || strings.TrimSpace(title) == "" {
				h.responder.WriteError(w, errs.NewBadRequestError("Invalid project title"))
				return
			}
			fields["projectTitle"] = strings.TrimSpace(title)
		}

		if raw, ok := body["groupMembers"]; ok {
			var members []models.GroupMember
			if json.Unmarshal(raw, &members) != nil {
				h.responder.WriteError(w, errs.NewInvalidGroupMembersError("Invalid group members format"))
				return
			}
			fields["groupMembers"] = members
		}

		if len(fields) == 0 {
			h.responder.WriteError(w, errs.NewBadRequestError("Status is required"))
			return
		}

		reg, updateErr := h.registrationRepo.UpdateFields(id, fields)
		if updateErr != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "registration", updateErr))
			return
		}
		if reg == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("Registration not found"))
			return
		}

		h.responder.WriteJSON(w, map[string]any{
			"message":      "Registration status updated successfully",
			"registration": reg,
		})
	}
}

// deleteRegistration removes a registration and best-effort deletes its
// stored screenshot. File-store failures are logged and swallowed; an
// orphaned file beats a blocked delete.
func (h registrationHandler) deleteRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := registrationID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		reg, findErr := h.registrationRepo.FindByID(id)
		if findErr != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "registration", findErr))
			return
		}
		if reg == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("Registration not found"))
			return
		}

		if reg.PaymentScreenshotKey != nil {
			if delErr := h.files.Delete(r.Context(), *reg.PaymentScreenshotKey); delErr != nil {
				h.logger.Warn().Err(delErr).Str("key", *reg.PaymentScreenshotKey).Msg("failed to delete payment screenshot")
			}
		}

		if _, delErr := h.registrationRepo.Delete(id); delErr != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "registration", delErr))
			return
		}

		h.responder.WriteJSON(w, map[string]any{
			"message":   "Registration deleted successfully",
			"deletedId": id,
		})
	}
}

type bulkStatusRequest struct {
	IDs    []uint `json:"ids"`
	Status string `json:"status"`
}

type bulkDeleteRequest struct {
	IDs []uint `json:"ids"`
}

type bulkResult struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
}

// bulkUpdateStatus applies a status to each selected id independently.
// Partial failure is reported, never rolled back.
func (h registrationHandler) bulkUpdateStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("Malformed request body"))
			return
		}
		if len(req.IDs) == 0 {
			h.responder.WriteError(w, errs.NewBadRequestError("No registrations selected"))
			return
		}
		if !models.IsValidStatus(req.Status) {
			h.responder.WriteError(w, errs.NewBadRequestError("Invalid status. Must be pending, approved, or rejected"))
			return
		}

		result := h.fanOut(req.IDs, func(id uint) bool {
			reg, err := h.registrationRepo.UpdateStatus(id, req.Status)
			if err != nil {
				h.logger.Error().Err(err).Uint("id", id).Msg("bulk status update failed")
				return false
			}
			return reg != nil
		})

		h.responder.WriteJSON(w, result)
	}
}

// bulkDelete removes each selected id independently, including stored-file
// cleanup per deleted record.
func (h registrationHandler) bulkDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkDeleteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("Malformed request body"))
			return
		}
		if len(req.IDs) == 0 {
			h.responder.WriteError(w, errs.NewBadRequestError("No registrations selected"))
			return
		}

		ctx := r.Context()
		result := h.fanOut(req.IDs, func(id uint) bool {
			reg, err := h.registrationRepo.Delete(id)
			if err != nil {
				h.logger.Error().Err(err).Uint("id", id).Msg("bulk delete failed")
				return false
			}
			if reg == nil {
				return false
			}
			if reg.PaymentScreenshotKey != nil {
				if delErr := h.files.Delete(ctx, *reg.PaymentScreenshotKey); delErr != nil {
					h.logger.Warn().Err(delErr).Str("key", *reg.PaymentScreenshotKey).Msg("failed to delete payment screenshot")
				}
			}
			return true
		})

		h.responder.WriteJSON(w, result)
	}
}

// fanOut runs op per id with bounded concurrency, collecting each outcome
// independently.
func (h registrationHandler) fanOut(ids []uint, op func(id uint) bool) bulkResult {
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int64
		sem       = make(chan struct{}, bulkWorkers)
	)

	for _, id := range ids {
		wg.Add(1)
		sem <- struct{}{}
		go func(id uint) {
			defer wg.Done()
			defer func() { <-sem }()
			if op(id) {
				succeeded.Add(1)
			}
		}(id)
	}
	wg.Wait()

	return bulkResult{
		Attempted: len(ids),
		Succeeded: int(succeeded.Load()),
	}
}

// getStats returns the dashboard counters.
func (h registrationHandler) getStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.registrationRepo.GetStats()
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("aggregate", "registrations", err))
			return
		}
		h.responder.WriteJSON(w, stats)
	}
}

func registrationID(r *http.Request) (uint, *errs.ApiErr) {
	idStr := chi.URLParam(r, "registrationID")
	if idStr == "" {
		return 0, errs.NewBadRequestError("Registration ID is required")
	}
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0, errs.NewBadRequestError("Invalid registration ID")
	}
	return uint(id), nil
}

func parseIntOrDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}
