// Package httpapi exposes the governance engine over HTTP: the two legacy
// upload and cancel endpoints consumed by the form UI plus a JSON API for
// catalog, request, draft, template, and submission management.
package httpapi

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"formcore/internal/blob"
	"formcore/internal/core"
	"formcore/pkg/domain"
)

const maxUploadBytes = 32 << 20

// Handler serves the HTTP surface over the governance service and the blob
// store holding uploaded files.
type Handler struct {
	svc   *core.Service
	blobs blob.Store
	auth  *Authenticator
	log   *slog.Logger
}

// NewHandler wires the HTTP surface. A nil logger falls back to the default.
func NewHandler(svc *core.Service, blobs blob.Store, auth *Authenticator, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, blobs: blobs, auth: auth, log: log}
}

// Routes registers every endpoint on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /uploadFile", h.handleUploadFile)
	mux.HandleFunc("POST /cancelSubmission", h.handleCancelSubmission)

	mux.HandleFunc("GET /api/v1/option-sets", h.withActor(h.listOptionSets))
	mux.HandleFunc("POST /api/v1/option-sets", h.withActor(h.createOptionSet))
	mux.HandleFunc("GET /api/v1/option-sets/{id}", h.withActor(h.getOptionSet))
	mux.HandleFunc("POST /api/v1/option-sets/{id}/subsets", h.withActor(h.createSubset))
	mux.HandleFunc("POST /api/v1/option-sets/{id}/code", h.withActor(h.migrateCode))
	mux.HandleFunc("POST /api/v1/option-sets/{id}/items/batch", h.withActor(h.batchUpload))

	mux.HandleFunc("GET /api/v1/option-requests", h.withActor(h.listOptionRequests))
	mux.HandleFunc("POST /api/v1/option-requests", h.withActor(h.submitOptionRequest))
	mux.HandleFunc("GET /api/v1/option-requests/{id}", h.withActor(h.getOptionRequest))
	mux.HandleFunc("POST /api/v1/option-requests/{id}/approve", h.withActor(h.approveOptionRequest))
	mux.HandleFunc("POST /api/v1/option-requests/{id}/reject", h.withActor(h.rejectOptionRequest))

	mux.HandleFunc("GET /api/v1/option-set-drafts", h.withActor(h.listOptionSetDrafts))
	mux.HandleFunc("POST /api/v1/option-set-drafts", h.withActor(h.createOptionSetDraft))
	mux.HandleFunc("GET /api/v1/option-set-drafts/{id}", h.withActor(h.getOptionSetDraft))
	mux.HandleFunc("PUT /api/v1/option-set-drafts/{id}", h.withActor(h.updateOptionSetDraft))
	mux.HandleFunc("DELETE /api/v1/option-set-drafts/{id}", h.withActor(h.deleteOptionSetDraft))
	mux.HandleFunc("POST /api/v1/option-set-drafts/{id}/submit", h.withActor(h.submitOptionSetDraft))
	mux.HandleFunc("POST /api/v1/option-set-drafts/{id}/review", h.withActor(h.reviewOptionSetDraft))

	mux.HandleFunc("GET /api/v1/template-drafts", h.withActor(h.listTemplateDrafts))
	mux.HandleFunc("POST /api/v1/template-drafts", h.withActor(h.createTemplateDraft))
	mux.HandleFunc("GET /api/v1/template-drafts/{id}", h.withActor(h.getTemplateDraft))
	mux.HandleFunc("PUT /api/v1/template-drafts/{id}", h.withActor(h.updateTemplateDraft))
	mux.HandleFunc("DELETE /api/v1/template-drafts/{id}", h.withActor(h.deleteTemplateDraft))
	mux.HandleFunc("POST /api/v1/template-drafts/{id}/submit", h.withActor(h.submitTemplateDraft))
	mux.HandleFunc("POST /api/v1/template-drafts/{id}/review", h.withActor(h.reviewTemplateDraft))

	mux.HandleFunc("GET /api/v1/templates", h.withActor(h.listTemplates))
	mux.HandleFunc("POST /api/v1/templates", h.withActor(h.createTemplate))
	mux.HandleFunc("GET /api/v1/templates/{id}", h.withActor(h.getTemplate))
	mux.HandleFunc("PUT /api/v1/templates/{id}", h.withActor(h.updateTemplate))
	mux.HandleFunc("POST /api/v1/templates/{id}/enabled", h.withActor(h.setTemplateEnabled))

	mux.HandleFunc("GET /api/v1/submissions", h.withActor(h.listSubmissions))
	mux.HandleFunc("POST /api/v1/submissions", h.withActor(h.createSubmission))
	mux.HandleFunc("GET /api/v1/submissions/{id}", h.withActor(h.getSubmission))

	mux.HandleFunc("GET /api/v1/audit-log", h.withActor(h.listAuditLog))

	return mux
}

// withActor authenticates the request before invoking the wrapped handler.
func (h *Handler) withActor(fn func(http.ResponseWriter, *http.Request, core.Actor)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := h.auth.Authenticate(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
			return
		}
		fn(w, r, actor)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error taxonomy onto HTTP status codes.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation domain.ValidationError
		authz      domain.AuthorizationError
		notFound   domain.NotFoundError
		conflict   domain.StateConflictError
		violation  domain.RuleViolationError
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validation.Message})
	case errors.As(err, &authz):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: authz.Message})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: notFound.Error()})
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: conflict.Message})
	case errors.As(err, &violation):
		writeJSON(w, http.StatusConflict, errorResponse{Error: violation.Error()})
	default:
		h.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decodeJSON[T any](r *http.Request) (T, error) {
	var v T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, domain.Validationf("malformed request body: %v", err)
	}
	return v, nil
}

// --- legacy form UI endpoints ---

type uploadedFileResponse struct {
	DriveFileID string    `json:"driveFileId"`
	Name        string    `json:"name"`
	MimeType    string    `json:"mimeType"`
	Size        int64     `json:"size"`
	WebViewLink string    `json:"webViewLink,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt"`
	UploadedBy  string    `json:"uploadedBy"`
}

type uploadFileResponse struct {
	Success bool                   `json:"success"`
	Files   []uploadedFileResponse `json:"files"`
}

type legacyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// handleUploadFile stores each multipart file part in the blob store and
// attaches the resulting file refs to the addressed submission.
func (h *Handler) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	actor, err := h.auth.Authenticate(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, legacyResponse{Message: err.Error()})
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, legacyResponse{Message: "malformed multipart body"})
		return
	}
	moduleID := r.FormValue("moduleId")
	submissionID := r.FormValue("submissionId")
	if moduleID == "" || submissionID == "" {
		writeJSON(w, http.StatusBadRequest, legacyResponse{Message: "moduleId and submissionId are required"})
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File) == 0 {
		writeJSON(w, http.StatusBadRequest, legacyResponse{Message: "no file parts in request"})
		return
	}

	ctx := r.Context()
	var files []uploadedFileResponse
	for _, headers := range r.MultipartForm.File {
		for _, fh := range headers {
			part, err := fh.Open()
			if err != nil {
				h.log.ErrorContext(ctx, "upload part open failed", "file", fh.Filename, "error", err)
				writeJSON(w, http.StatusInternalServerError, legacyResponse{Message: "upload failed"})
				return
			}
			fileID := uuid.NewString()
			key := path.Join("uploads", moduleID, submissionID, fileID+"-"+filepath.Base(fh.Filename))
			info, err := h.blobs.Put(ctx, key, part, blob.PutOptions{
				ContentType: fh.Header.Get("Content-Type"),
				Metadata:    map[string]string{"uploaded_by": actor.Email},
			})
			_ = part.Close()
			if err != nil {
				h.log.ErrorContext(ctx, "blob upload failed", "key", key, "error", err)
				writeJSON(w, http.StatusInternalServerError, legacyResponse{Message: "upload failed"})
				return
			}
			link := info.URL
			if link == "" {
				if signed, err := h.blobs.PresignURL(ctx, key, blob.SignedURLOptions{}); err == nil {
					link = signed
				}
			}
			ref := domain.FileRef{
				FileID:     fileID,
				Name:       fh.Filename,
				MimeType:   fh.Header.Get("Content-Type"),
				Size:       info.Size,
				ViewLink:   link,
				UploadedAt: time.Now().UTC(),
				UploadedBy: actor.Email,
			}
			if _, err := h.svc.AttachFile(ctx, actor, submissionID, ref); err != nil {
				h.writeError(w, r, err)
				return
			}
			files = append(files, uploadedFileResponse{
				DriveFileID: ref.FileID,
				Name:        ref.Name,
				MimeType:    ref.MimeType,
				Size:        ref.Size,
				WebViewLink: ref.ViewLink,
				UploadedAt:  ref.UploadedAt,
				UploadedBy:  ref.UploadedBy,
			})
		}
	}
	writeJSON(w, http.StatusOK, uploadFileResponse{Success: true, Files: files})
}

// handleCancelSubmission flips an ACTIVE submission to CANCELLED. State
// conflicts surface as 400 with a message, matching the form UI contract.
func (h *Handler) handleCancelSubmission(w http.ResponseWriter, r *http.Request) {
	actor, err := h.auth.Authenticate(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, legacyResponse{Message: err.Error()})
		return
	}
	body, err := decodeJSON[struct {
		SubmissionID string `json:"submissionId"`
	}](r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, legacyResponse{Message: err.Error()})
		return
	}
	if body.SubmissionID == "" {
		writeJSON(w, http.StatusBadRequest, legacyResponse{Message: "submissionId is required"})
		return
	}
	if _, err := h.svc.CancelSubmission(r.Context(), actor, body.SubmissionID); err != nil {
		var conflict domain.StateConflictError
		if errors.As(err, &conflict) {
			writeJSON(w, http.StatusBadRequest, legacyResponse{Message: conflict.Message})
			return
		}
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, legacyResponse{Success: true, Message: "submission cancelled"})
}

// --- option sets ---

type optionItemRequest struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type createOptionSetRequest struct {
	Code        string              `json:"code"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	IsMaster    bool                `json:"isMaster"`
	Items       []optionItemRequest `json:"items"`
}

func itemInputs(items []optionItemRequest) []core.NewOptionItemInput {
	out := make([]core.NewOptionItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, core.NewOptionItemInput{Value: it.Value, Label: it.Label})
	}
	return out
}

func (h *Handler) listOptionSets(w http.ResponseWriter, _ *http.Request, _ core.Actor) {
	writeJSON(w, http.StatusOK, h.svc.ListOptionSets())
}

func (h *Handler) createOptionSet(w http.ResponseWriter, r *http.Request, actor core.Actor) {
	body, err := decodeJSON[createOptionSetRequest](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.svc.CreateOptionSet(r.Context(), actor, core.CreateOptionSetInput{
		Code:        body.Code,
		Name:        body.Name,
		Description: body.Description,
		IsMaster:    body.IsMaster,
		Items:       itemInputs(body.Items),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) getOptionSet(w http.ResponseWriter, r *http.Request, _ core.Actor) {
	set, err := h.svc.GetOptionSet(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (h *Handler) createSubset(w http.ResponseWriter, r *http.Request, actor core.Actor) {
	body, err := decodeJSON[struct {
		Name   string   `json:"name"`
		Values []string `json:"values"`
	}](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.svc.CreateSubsetFromMaster(r.Context(), actor, r.PathValue("id"), body.Name, body.Values)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) migrateCode(w http.ResponseWriter, r *http.Request, actor core.Actor) {
	body, err := decodeJSON[struct {
		NewCode string `json:"newCode"`
	}](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	updated, err := h.svc.MigrateOptionSetCode(r.Context(), actor, r.PathValue("id"), body.NewCode)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// batchUpload ingests a CSV body of dictionary rows. One column is a label
// with a derived code; two columns are code then label. A leading header row
// is skipped.
func (h *Handler) batchUpload(w http.ResponseWriter, r *http.Request, actor core.Actor) {
	mode := core.UploadMode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = core.UploadAppend
	}
	rows, err := parseUploadRows(r.Body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	updated, err := h.svc.BatchUpload(r.Context(), actor, r.PathValue("id"), rows, mode)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func parseUploadRows(body io.Reader) ([]core.UploadRow, error) {
	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, domain.Validationf("malformed csv: %v", err)
	}
	if len(records) == 0 {
		return nil, domain.Validationf("csv body is empty")
	}
	start := 0
	if isHeaderRow(records[0]) {
		start = 1
	}
	rows := make([]core.UploadRow, 0, len(records)-start)
	for _, record := range records[start:] {
		switch len(record) {
		case 1:
			rows = append(rows, core.UploadRow{Label: strings.TrimSpace(record[0])})
		case 2:
			rows = append(rows, core.UploadRow{Code: strings.TrimSpace(record[0]), Label: strings.TrimSpace(record[1])})
		default:
			return nil, domain.Validationf("csv rows must have one or two columns, got %d", len(record))
		}
	}
	return rows, nil
}

func isHeaderRow(record []string) bool {
	first := strings.ToLower(strings.TrimSpace(record[0]))
	return first == "code" || first == "label"
}

// --- option requests ---

type submitOptionRequestBody struct {
	SetID   string `json:"setId"`
	Type    string `json:"type"`
	Payload struct {
		Code       string `json:"code"`
		Label      string `json:"label"`
		SourceCode string `json:"sourceCode"`
		TargetCode string `json:"targetCode"`
	} `json:"payload"`
}

func (h *Handler) listOptionRequests(w http.ResponseWriter, _ *http.Request, _ core.Actor) {
	writeJSON(w, http.StatusOK, h.svc.ListOptionRequests())
}

func (h *Handler) submitOptionRequest(w http.ResponseWriter, r *http.Request, actor core.Actor) {
	body, err := decodeJSON[submitOptionRequestBody](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.svc.SubmitOptionRequest(r.Context(), actor, core.SubmitOptionRequestInput{
		SetID: body.SetID,
		Type:  domain.RequestType(body.Type),
		Payload: domain.RequestPayload{
			Code:       body.Payload.Code,
			Label:      body.Payload.Label,
			SourceCode: body.Payload.SourceCode,
			TargetCode: body.Payload.TargetCode,
		},
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) getOptionRequest(w http.ResponseWriter, r *http.Request, _ core.Actor) {
	request, err := h.svc.GetOptionRequest(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

type reviewNoteBody struct {
	Note string `json:"note"`
}

func (h *Handler) approveOptionRequest(w http.ResponseWriter, r *http.Request, actor core.Actor) {
	body, err := decodeJSON[reviewNoteBody](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	reviewed, err := h.svc.ApproveOptionRequest(r.Context(), actor, r.PathValue("id"), body.Note)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviewed)
}

func (h *Handler) rejectOptionRequest(w http.ResponseWriter, r *http.Request, actor core.Actor) {
	body, err := decodeJSON[reviewNoteBody](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	reviewed, err := h.svc.RejectOptionRequest(r.Context(), actor, r.PathValue("id"), body.Note)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviewed)
}

// --- option set drafts ---

type optionSetDraftRequest struct {
	Code        string              `json:"code"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Items       []optionItemRequest `json:"items"`
}

func (r optionSetDraftRequest) input() core.OptionSetDraftInput {
	return core.OptionSetDraftInput{
		Code:        r.Code,
		Name:        r.Name,
		Description: r.Description,
		Items:       itemInputs(r.Items),
	}
}

type draftReviewBody struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

func (h *Handler) listOptionSetDrafts(w http.ResponseWriter, _ *http.Request, _ core.Actor) {
	writeJSON(w, http.StatusOK, h.svc.ListOptionSetDrafts())
}

func (h *Handler) createOptionSetDraft(w http.ResponseWriter, r *http.Request, actor core.Actor) {
	body, err := decodeJSON[optionSetDraftRequest](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.svc.CreateOptionSetDraft(r.Context(), actor, body.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) getOptionSetDraft(w http.ResponseWriter, r *http.Request, _ core.Actor) {
	draft, err := h.svc.GetOptionSetDraft(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (h *Handler) updateOptionSetDraft(w http.ResponseWriter, r *http.Request, actor core.Actor) {
	body, err := decodeJSON[optionSetDraftRequest](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	updated, err := h.svc.UpdateOptionSetDraft(r.Context(), actor, r.PathValue("id"), body.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteOptionSetDraft(w http.ResponseWriter, r *http.Request, actor core.Actor) {
	if err := h.svc.DeleteOptionSetDraft(r.Context(), actor, r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) submitOptionSetDraft(w http.ResponseWriter, r *http.Request, actor core.Actor) {
	draft, err := h.svc.SubmitOptionSetDraft(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (h *Handler) reviewOptionSetDraft(w http.ResponseWriter, r *http.Request, actor core.Actor) {
	body, err := decodeJSON[draftReviewBody](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	draft, err := h.svc.ReviewOptionSetDraft(r.Context(), actor, r.PathValue("id"), body.Approve, body.Note)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// --- templates and template drafts ---

type templateFieldRequest struct {
	Key         string `json:"key"`
	Type        string `json:"type"`
	Label       string `json:"label"`
	Required    bool   `json:"required"`
	Order       int    `json:"order"`
	OptionSetID string `json:"optionSetId"`
	Multiple    bool   `json:"multiple"`
}

type templateRequest struct {
	Name            string                 `json:"name"`
	ModuleID        string                 `json:"moduleId"`
	ActionID        string                 `json:"actionId"`
	Fields          []templateFieldRequest `json:"fields"`
	AccessType      string                 `json:"accessType"`
	AccessWhitelist []string               `json:"accessWhitelist"`
	ManagerEmails   []string               `json:"managerEmails"`
}

func (t templateRequest) input() core.TemplateInput {
	fields := make([]domain.FieldDefinition, 0, len(t.Fields))
	for _, f := range t.Fields {
		fields = append(fields, domain.FieldDefinition{
			Key:         f.Key,
			Type:        f.Type,
			Label:       f.Label,
			Required:    f.Required,
			Order:       f.Order,
			OptionSetID: f.OptionSetID,
			Multiple:    f.Multiple,
		})
	}
	accessType := domain.AccessType(t.AccessType)
	if accessType == "" {
		accessType = domain.AccessAll
	}
	return core.TemplateInput{
		Name:            t.Name,
		ModuleID:        t.ModuleID,
		ActionID:        t.ActionID,
		Fields:          fields,
		AccessType:      accessType,
		AccessWhitelist: t.AccessWhitelist,
		ManagerEmails:   t.ManagerEmails,
	}
}

func (h *Handler) listTemplates(w http.ResponseWriter, _ *http.Request, _ core.Actor) {
	writeJSON(w, http.StatusOK, h.svc.ListTemplates())
}

func (h *Handler) createTemplate(w http.ResponseWriter, r *http.Request, actor core.Actor) {
	body, err := decodeJSON[templateRequest](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.svc.CreateTemplate(r.Context(), actor, body.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) getTemplate(w http.ResponseWriter, r *http.Request, _ core.Actor) {
	template, err := h.svc.GetTemplate(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, template)
}

func (h *Handler) updateTemplate(w http.ResponseWriter, r *http.Request, actor core.Actor) {
	body, err := decodeJSON[templateRequest](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	updated, err := h.svc.UpdateTemplate(r.Context(), actor, r.PathValue("id"), body.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) setTemplateEnabled(w http.ResponseWriter, r *http.Request, actor core.Actor) {
	body, err := decodeJSON[struct {
		Enabled bool `json:"enabled"`
	}](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	updated, err := h.svc.SetTemplateEnabled(r.Context(), actor, r.PathValue("id"), body.Enabled)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) listTemplateDrafts(w http.ResponseWriter, _ *http.Request, _ core.Actor) {
	writeJSON(w, http.StatusOK, h.svc.ListTemplateDrafts())
}

func (h *Handler) createTemplateDraft(w http.ResponseWriter, r *http.Request, actor core.Actor) {
	body, err := decodeJSON[templateRequest](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.svc.CreateTemplateDraft(r.Context(), actor, body.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) getTemplateDraft(w http.ResponseWriter, r *http.Request, _ core.Actor) {
	draft, err := h.svc.GetTemplateDraft(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (h *Handler) updateTemplateDraft(w http.ResponseWriter, r *http.Request, actor core.Actor) {
	body, err := decodeJSON[templateRequest](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	updated, err := h.svc.UpdateTemplateDraft(r.Context(), actor, r.PathValue("id"), body.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteTemplateDraft(w http.ResponseWriter, r *http.Request, actor core.Actor) {
	if err := h.svc.DeleteTemplateDraft(r.Context(), actor, r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) submitTemplateDraft(w http.ResponseWriter, r *http.Request, actor core.Actor) {
	draft, err := h.svc.SubmitTemplateDraft(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (h *Handler) reviewTemplateDraft(w http.ResponseWriter, r *http.Request, actor core.Actor) {
	body, err := decodeJSON[draftReviewBody](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	draft, err := h.svc.ReviewTemplateDraft(r.Context(), actor, r.PathValue("id"), body.Approve, body.Note)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// --- submissions ---

func (h *Handler) listSubmissions(w http.ResponseWriter, _ *http.Request, _ core.Actor) {
	writeJSON(w, http.StatusOK, h.svc.ListSubmissions())
}

func (h *Handler) createSubmission(w http.ResponseWriter, r *http.Request, actor core.Actor) {
	body, err := decodeJSON[struct {
		TemplateID string         `json:"templateId"`
		Values     map[string]any `json:"values"`
	}](r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.svc.CreateSubmission(r.Context(), actor, core.CreateSubmissionInput{
		TemplateID: body.TemplateID,
		Values:     body.Values,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) getSubmission(w http.ResponseWriter, r *http.Request, _ core.Actor) {
	submission, err := h.svc.GetSubmission(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, submission)
}

// --- audit ---

func (h *Handler) listAuditLog(w http.ResponseWriter, r *http.Request, _ core.Actor) {
	targetID := r.URL.Query().Get("targetId")
	if targetID == "" {
		h.writeError(w, r, domain.Validationf("targetId query parameter is required"))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.ListAuditLog(targetID))
}
