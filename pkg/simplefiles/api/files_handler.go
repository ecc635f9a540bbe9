package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/tendant/simple-files/pkg/simplefiles"
)

// TokenHeader carries the session token issued by the identity service.
const TokenHeader = "X-Token"

// FilesHandler exposes the file lifecycle operations over HTTP
type FilesHandler struct {
	service  simplefiles.Service
	identity simplefiles.IdentityResolver
	logger   *slog.Logger
}

// NewFilesHandler creates a handler. A nil logger uses slog.Default.
func NewFilesHandler(service simplefiles.Service, identity simplefiles.IdentityResolver, logger *slog.Logger) *FilesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FilesHandler{
		service:  service,
		identity: identity,
		logger:   logger.With("component", "files_handler"),
	}
}

// Routes returns the router for files endpoints
func (h *FilesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateFile)
	r.Get("/", h.ListFiles)
	r.Get("/{id}", h.GetFile)
	r.Put("/{id}/publish", h.PublishFile)
	r.Put("/{id}/unpublish", h.UnpublishFile)
	r.Get("/{id}/data", h.GetFileData)
	return r
}

// requester resolves the caller from the X-Token header, falling back to an
// Authorization bearer token.
func (h *FilesHandler) requester(r *http.Request) simplefiles.Requester {
	token := r.Header.Get(TokenHeader)
	if token == "" {
		token = jwtauth.TokenFromHeader(r)
	}
	return h.identity.Resolve(r.Context(), token)
}

// CreateFile creates a folder, file or image from a JSON payload
func (h *FilesHandler) CreateFile(w http.ResponseWriter, r *http.Request) {
	requester := h.requester(r)
	if !requester.IsAuthenticated() {
		writeError(w, r, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	var req simplefiles.CreateFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		h.logger.Debug("Failed to decode request", "error", err)
		writeError(w, r, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	file, err := h.service.CreateFile(r.Context(), requester, req)
	if err != nil {
		respondError(w, r, h.logger, "create", err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, file)
}

// GetFile returns one of the caller's records
func (h *FilesHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	file, err := h.service.GetFile(r.Context(), h.requester(r), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, "get", err)
		return
	}
	render.JSON(w, r, file)
}

// ListFiles returns one page of the caller's records under parentId
func (h *FilesHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	files, err := h.service.ListFiles(r.Context(), h.requester(r), simplefiles.ListFilesRequest{
		ParentID: query.Get("parentId"),
		Page:     query.Get("page"),
	})
	if err != nil {
		respondError(w, r, h.logger, "list", err)
		return
	}
	render.JSON(w, r, files)
}

// PublishFile makes a record's content public
func (h *FilesHandler) PublishFile(w http.ResponseWriter, r *http.Request) {
	file, err := h.service.PublishFile(r.Context(), h.requester(r), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, "publish", err)
		return
	}
	render.JSON(w, r, file)
}

// UnpublishFile makes a record's content private
func (h *FilesHandler) UnpublishFile(w http.ResponseWriter, r *http.Request) {
	file, err := h.service.UnpublishFile(r.Context(), h.requester(r), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, "unpublish", err)
		return
	}
	render.JSON(w, r, file)
}

// GetFileData streams a record's bytes, optionally a size variant
func (h *FilesHandler) GetFileData(w http.ResponseWriter, r *http.Request) {
	content, err := h.service.GetFileContent(r.Context(), h.requester(r), chi.URLParam(r, "id"), r.URL.Query().Get("size"))
	if err != nil {
		respondError(w, r, h.logger, "get_data", err)
		return
	}

	w.Header().Set("Content-Type", content.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(content.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content.Data); err != nil {
		h.logger.Debug("Failed to write content", "file_id", content.File.ID, "error", err)
	}
}

// Health reports liveness
func Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}
