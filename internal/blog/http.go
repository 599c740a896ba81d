package blog

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/ivlev/scrollsite/internal/analyzer"
	"github.com/ivlev/scrollsite/internal/director"
	"github.com/ivlev/scrollsite/internal/metrics"
	"github.com/ivlev/scrollsite/internal/system"
)

// qrSize is the edge of a share code in pixels.
const qrSize = 256

// HTTPHandler serves the blog API, uploads, scenes and the operational
// endpoints.
type HTTPHandler struct {
	store    *Store
	uploads  *Uploads
	scenes   *director.Director
	metrics  *metrics.Registry
	log      *zap.Logger
	maxBytes int64
}

// NewHTTPHandler wires the handler. scenes may be nil; the scene routes then
// answer 404.
func NewHTTPHandler(store *Store, uploads *Uploads, scenes *director.Director, m *metrics.Registry, log *zap.Logger, maxBytes int64) *HTTPHandler {
	if m == nil {
		m = metrics.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPHandler{
		store:    store,
		uploads:  uploads,
		scenes:   scenes,
		metrics:  m,
		log:      log.Named("http"),
		maxBytes: maxBytes,
	}
}

// RegisterHTTPHandlers mounts every route. prefix is the API prefix without a
// trailing slash, e.g. "/api".
func (h *HTTPHandler) RegisterHTTPHandlers(prefix string, mux *http.ServeMux) {
	prefix = strings.TrimRight(prefix, "/")
	route := func(pattern string, fn http.HandlerFunc) {
		method, path, _ := strings.Cut(pattern, " ")
		mux.Handle(method+" "+prefix+path, h.metrics.Middleware(pattern, fn))
	}

	route("GET /blogs", h.handleList)
	route("GET /blogs/{id}", h.handleGet)
	route("POST /blogs/create", h.handleCreate)
	route("PUT /blogs/{id}", h.handleUpdate)
	route("DELETE /blogs/{id}", h.handleDelete)
	route("GET /blogs/{id}/qr", h.handleQR)
	route("POST /upload", h.handleUpload)
	route("GET /scenes", h.handleScenes)
	route("GET /scenes/{page}", h.handleScene)

	files := http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.uploads.Dir)))
	mux.Handle("GET /uploads/", h.metrics.Middleware("GET /uploads/", files))
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.Handle("GET /metrics", h.metrics.Handler())
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// UploadResponse is the body of POST /upload.
type UploadResponse struct {
	URL   string          `json:"url"`
	Cover *analyzer.Cover `json:"cover,omitempty"`
}

func (h *HTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.List(r.Context())
	h.metrics.ObserveBlog("list", err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *HTTPHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(r.Context(), r.PathValue("id"))
	h.metrics.ObserveBlog("get", err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *HTTPHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in Input
	if !h.decode(w, r, &in) {
		return
	}
	p, err := h.store.Create(r.Context(), in)
	h.metrics.ObserveBlog("create", err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.log.Info("post created", zap.String("id", p.ID), zap.String("title", p.Title))
	w.Header().Set("Location", strings.TrimSuffix(r.URL.Path, "/create")+"/"+p.ID)
	writeJSON(w, http.StatusCreated, p)
}

func (h *HTTPHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var in Input
	if !h.decode(w, r, &in) {
		return
	}
	p, err := h.store.Update(r.Context(), r.PathValue("id"), in)
	h.metrics.ObserveBlog("update", err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.log.Info("post updated", zap.String("id", p.ID))
	writeJSON(w, http.StatusOK, p)
}

func (h *HTTPHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := h.store.Delete(r.Context(), id)
	h.metrics.ObserveBlog("delete", err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.log.Info("post deleted", zap.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) handleQR(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	link := strings.TrimRight(h.uploads.PublicURL, "/") + "/blogs/" + p.ID
	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (h *HTTPHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "too_large", Message: err.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "file_required", Message: "image field is required"})
		return
	}
	defer file.Close()

	buf := system.GetBuffer()
	defer system.PutBuffer(buf)
	if _, err := io.Copy(buf, file); err != nil {
		h.writeError(w, err)
		return
	}

	stored, err := h.uploads.Save(buf.Bytes())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.metrics.ObserveUpload(stored.MediaType)
	h.log.Info("upload stored", zap.String("name", stored.Name), zap.String("type", stored.MediaType))
	writeJSON(w, http.StatusOK, UploadResponse{URL: stored.URL, Cover: stored.Cover})
}

func (h *HTTPHandler) handleScenes(w http.ResponseWriter, r *http.Request) {
	pages := []string{}
	if h.scenes != nil {
		pages = h.scenes.Pages()
	}
	writeJSON(w, http.StatusOK, pages)
}

func (h *HTTPHandler) handleScene(w http.ResponseWriter, r *http.Request) {
	if h.scenes == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "no scenes loaded"})
		return
	}
	sc, ok := h.scenes.Scene(r.PathValue("page"))
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "unknown page " + r.PathValue("page")})
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	st, err := system.ReadStats()
	if err != nil {
		h.log.Warn("stats unavailable", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "stats": st})
}

func (h *HTTPHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_json", Message: err.Error()})
		return false
	}
	return true
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: err.Error()})
	case errors.Is(err, ErrInvalid):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid", Message: err.Error()})
	default:
		h.log.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal", Message: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
