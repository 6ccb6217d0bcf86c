package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/reliastack/reliabase-engine/internal/engine"
	"github.com/reliastack/reliabase-engine/internal/metrics"
	"github.com/reliastack/reliabase-engine/internal/models"
	"github.com/reliastack/reliabase-engine/internal/repo"
	"github.com/reliastack/reliabase-engine/internal/services"
	"github.com/reliastack/reliabase-engine/internal/utils"
)

// Handlers bundles the HTTP endpoints and their dependencies.
type Handlers struct {
	logger   *slog.Logger
	store    *repo.Store
	svc      *services.AnalysisService
	validate *validator.Validate
	seedFn   func(ctx context.Context, seed int64) (repo.SeedResult, error)
}

// NewHandlers constructs the endpoint set.
func NewHandlers(logger *slog.Logger, store *repo.Store, svc *services.AnalysisService) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handlers{
		logger:   logger,
		store:    store,
		svc:      svc,
		validate: validator.New(),
	}
	if store != nil {
		h.seedFn = store.SeedDemo
	}
	return h
}

// Router assembles the chi router with middleware and all API routes.
func (h *Handlers) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(h.requestLogger)
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", h.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/assets", func(r chi.Router) {
			r.Get("/", h.listAssets)
			r.Post("/", h.createAsset)
			r.Route("/{assetID}", func(r chi.Router) {
				r.Get("/", h.getAsset)
				r.Put("/", h.updateAsset)
				r.Delete("/", h.deleteAsset)
				r.Get("/exposures", h.listExposures)
				r.Post("/exposures", h.createExposure)
				r.Get("/events", h.listEvents)
				r.Post("/events", h.createEvent)
				r.Get("/part-installs", h.listPartInstalls)
				r.Post("/part-installs", h.createPartInstall)
				r.Get("/analytics", h.assetAnalytics)
			})
		})
		r.Delete("/exposures/{exposureID}", h.deleteExposure)
		r.Route("/events/{eventID}", func(r chi.Router) {
			r.Delete("/", h.deleteEvent)
			r.Post("/failure-detail", h.createFailureDetail)
		})
		r.Get("/failure-modes", h.listFailureModes)
		r.Post("/failure-modes", h.createFailureMode)
		r.Get("/parts", h.listParts)
		r.Post("/parts", h.createPart)
		r.Put("/part-installs/{installID}/remove", h.removePart)
		r.Get("/fleet/analytics", h.fleetAnalytics)
		r.Post("/admin/seed", h.seedDemo)
	})

	return r
}

func (h *Handlers) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type assetRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	Type          string `json:"type" validate:"max=100"`
	Serial        string `json:"serial" validate:"max=100"`
	InServiceDate string `json:"in_service_date" validate:"omitempty"`
	Notes         string `json:"notes" validate:"max=2000"`
}

func (h *Handlers) createAsset(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if !h.decode(w, r, &req) {
		return
	}
	asset := models.Asset{Name: req.Name, Type: req.Type, Serial: req.Serial, Notes: req.Notes}
	if req.InServiceDate != "" {
		t, err := utils.ParseRFC3339(req.InServiceDate)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err)
			return
		}
		asset.InServiceDate = t
	}

	created, err := h.store.CreateAsset(r.Context(), asset)
	if err != nil {
		h.storageError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handlers) getAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "assetID")
	if !ok {
		return
	}
	asset, err := h.store.GetAsset(r.Context(), id)
	if err != nil {
		h.storageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, asset)
}

func (h *Handlers) listAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.store.ListAssets(r.Context())
	if err != nil {
		h.storageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, assets)
}

func (h *Handlers) updateAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "assetID")
	if !ok {
		return
	}
	var req assetRequest
	if !h.decode(w, r, &req) {
		return
	}
	asset := models.Asset{ID: id, Name: req.Name, Type: req.Type, Serial: req.Serial, Notes: req.Notes}
	if req.InServiceDate != "" {
		t, err := utils.ParseRFC3339(req.InServiceDate)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err)
			return
		}
		asset.InServiceDate = t
	}
	if err := h.store.UpdateAsset(r.Context(), asset); err != nil {
		h.storageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, asset)
}

func (h *Handlers) deleteAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "assetID")
	if !ok {
		return
	}
	if err := h.store.DeleteAsset(r.Context(), id); err != nil {
		h.storageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type exposureRequest struct {
	StartTime string  `json:"start_time" validate:"required"`
	EndTime   string  `json:"end_time" validate:"required"`
	Hours     float64 `json:"hours" validate:"gte=0"`
	Cycles    float64 `json:"cycles" validate:"gte=0"`
}

func (h *Handlers) createExposure(w http.ResponseWriter, r *http.Request) {
	assetID, ok := h.pathID(w, r, "assetID")
	if !ok {
		return
	}
	var req exposureRequest
	if !h.decode(w, r, &req) {
		return
	}
	start, err := utils.ParseRFC3339(req.StartTime)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}
	end, err := utils.ParseRFC3339(req.EndTime)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	created, err := h.store.CreateExposure(r.Context(), models.ExposureLog{
		AssetID:   assetID,
		StartTime: start,
		EndTime:   end,
		Hours:     req.Hours,
		Cycles:    req.Cycles,
	})
	if err != nil {
		h.storageError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handlers) listExposures(w http.ResponseWriter, r *http.Request) {
	assetID, ok := h.pathID(w, r, "assetID")
	if !ok {
		return
	}
	exposures, err := h.store.ListExposures(r.Context(), assetID)
	if err != nil {
		h.storageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, exposures)
}

func (h *Handlers) deleteExposure(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "exposureID")
	if !ok {
		return
	}
	if err := h.store.DeleteExposure(r.Context(), id); err != nil {
		h.storageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type eventRequest struct {
	Timestamp       string  `json:"timestamp" validate:"required"`
	Type            string  `json:"event_type" validate:"required,oneof=failure maintenance inspection"`
	DowntimeMinutes float64 `json:"downtime_minutes" validate:"gte=0"`
	Description     string  `json:"description" validate:"max=2000"`
}

func (h *Handlers) createEvent(w http.ResponseWriter, r *http.Request) {
	assetID, ok := h.pathID(w, r, "assetID")
	if !ok {
		return
	}
	var req eventRequest
	if !h.decode(w, r, &req) {
		return
	}
	at, err := utils.ParseRFC3339(req.Timestamp)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	created, err := h.store.CreateEvent(r.Context(), models.Event{
		AssetID:         assetID,
		Timestamp:       at,
		Type:            models.EventType(req.Type),
		DowntimeMinutes: req.DowntimeMinutes,
		Description:     req.Description,
	})
	if err != nil {
		h.storageError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handlers) listEvents(w http.ResponseWriter, r *http.Request) {
	assetID, ok := h.pathID(w, r, "assetID")
	if !ok {
		return
	}
	events, err := h.store.ListEvents(r.Context(), assetID)
	if err != nil {
		h.storageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}

func (h *Handlers) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "eventID")
	if !ok {
		return
	}
	if err := h.store.DeleteEvent(r.Context(), id); err != nil {
		h.storageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type failureModeRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Category string `json:"category" validate:"max=100"`
}

func (h *Handlers) createFailureMode(w http.ResponseWriter, r *http.Request) {
	var req failureModeRequest
	if !h.decode(w, r, &req) {
		return
	}
	created, err := h.store.CreateFailureMode(r.Context(), models.FailureMode{Name: req.Name, Category: req.Category})
	if err != nil {
		h.storageError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handlers) listFailureModes(w http.ResponseWriter, r *http.Request) {
	modes, err := h.store.ListFailureModes(r.Context())
	if err != nil {
		h.storageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, modes)
}

type failureDetailRequest struct {
	FailureModeID    int64  `json:"failure_mode_id" validate:"required,gt=0"`
	RootCause        string `json:"root_cause" validate:"max=2000"`
	CorrectiveAction string `json:"corrective_action" validate:"max=2000"`
	PartReplaced     string `json:"part_replaced" validate:"max=200"`
}

func (h *Handlers) createFailureDetail(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.pathID(w, r, "eventID")
	if !ok {
		return
	}
	var req failureDetailRequest
	if !h.decode(w, r, &req) {
		return
	}
	created, err := h.store.CreateFailureDetail(r.Context(), models.EventFailureDetail{
		EventID:          eventID,
		FailureModeID:    req.FailureModeID,
		RootCause:        req.RootCause,
		CorrectiveAction: req.CorrectiveAction,
		PartReplaced:     req.PartReplaced,
	})
	if err != nil {
		h.storageError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

type partRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	PartNumber string `json:"part_number" validate:"max=100"`
}

func (h *Handlers) createPart(w http.ResponseWriter, r *http.Request) {
	var req partRequest
	if !h.decode(w, r, &req) {
		return
	}
	created, err := h.store.CreatePart(r.Context(), models.Part{Name: req.Name, PartNumber: req.PartNumber})
	if err != nil {
		h.storageError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handlers) listParts(w http.ResponseWriter, r *http.Request) {
	parts, err := h.store.ListParts(r.Context())
	if err != nil {
		h.storageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, parts)
}

type partInstallRequest struct {
	PartID      int64  `json:"part_id" validate:"required,gt=0"`
	InstallTime string `json:"install_time" validate:"required"`
}

func (h *Handlers) createPartInstall(w http.ResponseWriter, r *http.Request) {
	assetID, ok := h.pathID(w, r, "assetID")
	if !ok {
		return
	}
	var req partInstallRequest
	if !h.decode(w, r, &req) {
		return
	}
	at, err := utils.ParseRFC3339(req.InstallTime)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}
	created, err := h.store.CreatePartInstall(r.Context(), models.PartInstall{
		AssetID:     assetID,
		PartID:      req.PartID,
		InstallTime: at,
	})
	if err != nil {
		h.storageError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handlers) listPartInstalls(w http.ResponseWriter, r *http.Request) {
	assetID, ok := h.pathID(w, r, "assetID")
	if !ok {
		return
	}
	installs, err := h.store.ListPartInstalls(r.Context(), assetID)
	if err != nil {
		h.storageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, installs)
}

type removePartRequest struct {
	RemoveTime string `json:"remove_time" validate:"required"`
}

func (h *Handlers) removePart(w http.ResponseWriter, r *http.Request) {
	installID, ok := h.pathID(w, r, "installID")
	if !ok {
		return
	}
	var req removePartRequest
	if !h.decode(w, r, &req) {
		return
	}
	at, err := utils.ParseRFC3339(req.RemoveTime)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.store.RemovePart(r.Context(), installID, at); err != nil {
		h.storageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) assetAnalytics(w http.ResponseWriter, r *http.Request) {
	assetID, ok := h.pathID(w, r, "assetID")
	if !ok {
		return
	}
	opts := services.AnalysisOptions{}
	if v := r.URL.Query().Get("resamples"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.respondError(w, http.StatusBadRequest, fmt.Errorf("resamples must be a positive integer"))
			return
		}
		opts.BootstrapResamples = n
	}
	if v := r.URL.Query().Get("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, fmt.Errorf("seed must be an integer"))
			return
		}
		opts.BootstrapSeed = n
	}
	if r.URL.Query().Get("refresh") == "true" {
		opts.SkipCache = true
	}

	doc, err := h.svc.AnalyzeAsset(r.Context(), assetID, opts)
	if err != nil {
		h.analysisError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (h *Handlers) fleetAnalytics(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.respondError(w, http.StatusBadRequest, fmt.Errorf("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	view, err := h.svc.FleetAnalytics(r.Context(), limit)
	if err != nil {
		h.analysisError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handlers) seedDemo(w http.ResponseWriter, r *http.Request) {
	if h.seedFn == nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Errorf("seeding not configured"))
		return
	}
	seed := int64(42)
	if v := r.URL.Query().Get("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, fmt.Errorf("seed must be an integer"))
			return
		}
		seed = n
	}
	result, err := h.seedFn(r.Context(), seed)
	if err != nil {
		h.storageError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

// decode parses and validates a JSON body, writing the error response itself
// on failure.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func (h *Handlers) pathID(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil || id <= 0 {
		h.respondError(w, http.StatusBadRequest, fmt.Errorf("%s must be a positive integer", key))
		return 0, false
	}
	return id, true
}

// storageError maps storage failures onto HTTP status codes.
func (h *Handlers) storageError(w http.ResponseWriter, err error) {
	if errors.Is(err, repo.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, err)
		return
	}
	var invalid *engine.InvalidParameterError
	if errors.As(err, &invalid) {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}
	h.logger.Error("storage operation failed", slog.Any("error", err))
	h.respondError(w, http.StatusInternalServerError, fmt.Errorf("internal error"))
}

// analysisError additionally maps the statistical error taxonomy: bad inputs
// are 400, data that cannot support the requested analysis is 422.
func (h *Handlers) analysisError(w http.ResponseWriter, err error) {
	var invalid *engine.InvalidParameterError
	if errors.As(err, &invalid) {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}
	var insufficient *engine.InsufficientDataError
	var degenerate *engine.DegenerateDataError
	var optimization *engine.OptimizationFailureError
	if errors.As(err, &insufficient) || errors.As(err, &degenerate) || errors.As(err, &optimization) {
		h.respondError(w, http.StatusUnprocessableEntity, err)
		return
	}
	h.storageError(w, err)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, errorResponse{Error: err.Error()})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Default().Error("encode response", slog.Any("error", err))
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *Handlers) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		metrics.ObserveHTTPRequest(r.Method, fmt.Sprintf("%dxx", rec.status/100))
		h.logger.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}
