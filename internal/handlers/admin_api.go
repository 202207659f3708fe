package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aalfraarauscher/loan-app-admin/internal/logger"
	"github.com/aalfraarauscher/loan-app-admin/internal/models"
	"github.com/aalfraarauscher/loan-app-admin/internal/repositories"
	"github.com/aalfraarauscher/loan-app-admin/internal/services"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 500
)

// AdminAPIHandler handles the integration management REST API
type AdminAPIHandler struct {
	logger         *logger.Logger
	integrationSvc services.IntegrationService
	organisations  repositories.OrganisationRepository
	resolver       *services.FieldResolver

	requestCounter  *prometheus.CounterVec
	dispatchCounter *prometheus.CounterVec
}

// NewAdminAPIHandler creates a new admin API handler
func NewAdminAPIHandler(
	log *logger.Logger,
	integrationSvc services.IntegrationService,
	organisations repositories.OrganisationRepository,
	resolver *services.FieldResolver,
) *AdminAPIHandler {
	// Create a new registry per handler so tests do not collide on
	// duplicate collector registration
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &AdminAPIHandler{
		logger:         log,
		integrationSvc: integrationSvc,
		organisations:  organisations,
		resolver:       resolver,
		requestCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_api_requests_total",
			Help: "Total number of admin API requests",
		}, []string{"method", "endpoint", "status"}),
		dispatchCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "webhook_dispatches_total",
			Help: "Total number of webhook dispatch requests accepted",
		}, []string{"integration_id"}),
	}
}

// RegisterRoutes registers all admin API routes
func (h *AdminAPIHandler) RegisterRoutes(router *mux.Router) {
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.Use(h.usageMetricsMiddleware)

	// Organisations
	v1.HandleFunc("/organisations", h.CreateOrganisation).Methods("POST")
	v1.HandleFunc("/organisations", h.GetAllOrganisations).Methods("GET")
	v1.HandleFunc("/organisations/{id}", h.GetOrganisation).Methods("GET")

	// Integration management
	v1.HandleFunc("/organisations/{orgId}/integrations", h.CreateIntegration).Methods("POST")
	v1.HandleFunc("/organisations/{orgId}/integrations", h.GetIntegrationsByOrganisation).Methods("GET")
	v1.HandleFunc("/organisations/{orgId}/health", h.GetIntegrationHealth).Methods("GET")
	v1.HandleFunc("/organisations/{orgId}/events", h.DispatchEvent).Methods("POST")
	v1.HandleFunc("/integrations/{id}", h.GetIntegration).Methods("GET")
	v1.HandleFunc("/integrations/{id}", h.UpdateIntegration).Methods("PUT")
	v1.HandleFunc("/integrations/{id}", h.DeleteIntegration).Methods("DELETE")
	v1.HandleFunc("/integrations/{id}/enable", h.EnableIntegration).Methods("POST")
	v1.HandleFunc("/integrations/{id}/disable", h.DisableIntegration).Methods("POST")

	// Field mapping management
	v1.HandleFunc("/integrations/{id}/mappings", h.CreateMapping).Methods("POST")
	v1.HandleFunc("/integrations/{id}/mappings", h.GetMappings).Methods("GET")
	v1.HandleFunc("/integrations/{id}/mappings/reorder", h.ReorderMappings).Methods("PUT")
	v1.HandleFunc("/mappings/{id}", h.UpdateMapping).Methods("PUT")
	v1.HandleFunc("/mappings/{id}", h.DeleteMapping).Methods("DELETE")

	// Dispatch, test and observability
	v1.HandleFunc("/integrations/{id}/test", h.TestIntegration).Methods("POST")
	v1.HandleFunc("/integrations/{id}/dispatch", h.DispatchIntegration).Methods("POST")
	v1.HandleFunc("/integrations/{id}/logs", h.GetLogs).Methods("GET")

	// Mapping catalog for the operator UI
	v1.HandleFunc("/catalog", h.GetCatalog).Methods("GET")
}

// Organisation handlers

func (h *AdminAPIHandler) CreateOrganisation(w http.ResponseWriter, r *http.Request) {
	var org models.Organisation
	if err := json.NewDecoder(r.Body).Decode(&org); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.organisations.Create(r.Context(), &org); err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to create organisation", err)
		return
	}

	h.writeJSONResponse(w, http.StatusCreated, org)
}

func (h *AdminAPIHandler) GetAllOrganisations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.organisations.GetAll(r.Context())
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to get organisations", err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, orgs)
}

func (h *AdminAPIHandler) GetOrganisation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	org, err := h.organisations.GetByID(r.Context(), id)
	if err != nil {
		h.writeErrorResponse(w, http.StatusNotFound, "Organisation not found", err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, org)
}

// Integration handlers

func (h *AdminAPIHandler) CreateIntegration(w http.ResponseWriter, r *http.Request) {
	orgID := mux.Vars(r)["orgId"]

	var integration models.Integration
	if err := json.NewDecoder(r.Body).Decode(&integration); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	integration.OrganisationID = orgID

	created, err := h.integrationSvc.CreateIntegration(r.Context(), &integration)
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Failed to create integration", err)
		return
	}

	h.writeJSONResponse(w, http.StatusCreated, created)
}

func (h *AdminAPIHandler) GetIntegrationsByOrganisation(w http.ResponseWriter, r *http.Request) {
	orgID := mux.Vars(r)["orgId"]

	integrations, err := h.integrationSvc.GetIntegrationsByOrganisation(r.Context(), orgID)
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to get integrations", err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, integrations)
}

func (h *AdminAPIHandler) GetIntegration(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	integration, err := h.integrationSvc.GetIntegration(r.Context(), id)
	if err != nil {
		h.writeErrorResponse(w, http.StatusNotFound, "Integration not found", err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, integration)
}

func (h *AdminAPIHandler) UpdateIntegration(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var integration models.Integration
	if err := json.NewDecoder(r.Body).Decode(&integration); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	integration.ID = id

	updated, err := h.integrationSvc.UpdateIntegration(r.Context(), &integration)
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Failed to update integration", err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, updated)
}

func (h *AdminAPIHandler) DeleteIntegration(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.integrationSvc.DeleteIntegration(r.Context(), id); err != nil {
		h.writeErrorResponse(w, http.StatusNotFound, "Failed to delete integration", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminAPIHandler) EnableIntegration(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, true)
}

func (h *AdminAPIHandler) DisableIntegration(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, false)
}

func (h *AdminAPIHandler) setEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	id := mux.Vars(r)["id"]

	if err := h.integrationSvc.SetIntegrationEnabled(r.Context(), id, enabled); err != nil {
		h.writeErrorResponse(w, http.StatusNotFound, "Failed to update integration", err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"id":         id,
		"is_enabled": enabled,
	})
}

// Field mapping handlers

func (h *AdminAPIHandler) CreateMapping(w http.ResponseWriter, r *http.Request) {
	integrationID := mux.Vars(r)["id"]

	var mapping models.FieldMapping
	if err := json.NewDecoder(r.Body).Decode(&mapping); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	mapping.IntegrationID = integrationID

	created, err := h.integrationSvc.AddMapping(r.Context(), &mapping)
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Failed to create field mapping", err)
		return
	}
	h.writeJSONResponse(w, http.StatusCreated, created)
}

func (h *AdminAPIHandler) GetMappings(w http.ResponseWriter, r *http.Request) {
	integrationID := mux.Vars(r)["id"]

	mappings, err := h.integrationSvc.GetMappings(r.Context(), integrationID)
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to get field mappings", err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, mappings)
}

func (h *AdminAPIHandler) UpdateMapping(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var mapping models.FieldMapping
	if err := json.NewDecoder(r.Body).Decode(&mapping); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	mapping.ID = id

	updated, err := h.integrationSvc.UpdateMapping(r.Context(), &mapping)
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Failed to update field mapping", err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, updated)
}

func (h *AdminAPIHandler) DeleteMapping(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.integrationSvc.DeleteMapping(r.Context(), id); err != nil {
		h.writeErrorResponse(w, http.StatusNotFound, "Failed to delete field mapping", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminAPIHandler) ReorderMappings(w http.ResponseWriter, r *http.Request) {
	integrationID := mux.Vars(r)["id"]

	var body struct {
		MappingIDs []string `json:"mapping_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(body.MappingIDs) == 0 {
		h.writeErrorResponse(w, http.StatusBadRequest, "mapping_ids is required", nil)
		return
	}

	if err := h.integrationSvc.ReorderMappings(r.Context(), integrationID, body.MappingIDs); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Failed to reorder field mappings", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Dispatch and test handlers

func (h *AdminAPIHandler) DispatchIntegration(w http.ResponseWriter, r *http.Request) {
	integrationID := mux.Vars(r)["id"]

	var body struct {
		ApplicationID string `json:"application_id"`
		Trigger       string `json:"trigger"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if body.ApplicationID == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "application_id is required", nil)
		return
	}

	deliveryID, err := h.integrationSvc.Dispatch(r.Context(), integrationID, body.ApplicationID, body.Trigger)
	if err != nil {
		if errors.Is(err, services.ErrIntegrationDisabled) {
			h.writeErrorResponse(w, http.StatusConflict, "Integration is disabled", err)
			return
		}
		var compileErr *services.CompileError
		if errors.As(err, &compileErr) {
			h.writeErrorResponse(w, http.StatusUnprocessableEntity, "Payload compilation failed", err)
			return
		}
		h.writeErrorResponse(w, http.StatusBadRequest, "Failed to dispatch delivery", err)
		return
	}

	h.dispatchCounter.WithLabelValues(integrationID).Inc()
	h.writeJSONResponse(w, http.StatusAccepted, map[string]interface{}{
		"delivery_id": deliveryID,
	})
}

func (h *AdminAPIHandler) DispatchEvent(w http.ResponseWriter, r *http.Request) {
	orgID := mux.Vars(r)["orgId"]

	var body struct {
		ApplicationID string `json:"application_id"`
		Trigger       string `json:"trigger"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if body.ApplicationID == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "application_id is required", nil)
		return
	}

	if err := h.integrationSvc.DispatchEvent(r.Context(), orgID, body.ApplicationID, body.Trigger); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Failed to dispatch event", err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *AdminAPIHandler) TestIntegration(w http.ResponseWriter, r *http.Request) {
	integrationID := mux.Vars(r)["id"]

	result, err := h.integrationSvc.Test(r.Context(), integrationID)
	if err != nil {
		h.writeErrorResponse(w, http.StatusNotFound, "Failed to test integration", err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, result)
}

// Observability handlers

func (h *AdminAPIHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	integrationID := mux.Vars(r)["id"]

	limit := defaultLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.writeErrorResponse(w, http.StatusBadRequest, "Invalid limit parameter", err)
			return
		}
		limit = parsed
	}
	if limit > maxLogLimit {
		limit = maxLogLimit
	}

	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.writeErrorResponse(w, http.StatusBadRequest, "Invalid offset parameter", err)
			return
		}
		offset = parsed
	}

	logs, err := h.integrationSvc.GetLogs(r.Context(), integrationID, limit, offset)
	if err != nil {
		h.writeErrorResponse(w, http.StatusNotFound, "Failed to get execution logs", err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, logs)
}

func (h *AdminAPIHandler) GetIntegrationHealth(w http.ResponseWriter, r *http.Request) {
	orgID := mux.Vars(r)["orgId"]

	health, err := h.integrationSvc.GetHealth(r.Context(), orgID)
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to get integration health", err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, health)
}

// GetCatalog returns the resolvable source paths and the transformer catalog
// so the operator UI can offer dropdowns instead of free-text entry
func (h *AdminAPIHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"source_paths": h.resolver.KnownPaths(),
		"transformers": services.KnownTransformers(),
	})
}

// Middleware

func (h *AdminAPIHandler) usageMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		h.requestCounter.WithLabelValues(
			r.Method,
			route,
			strconv.Itoa(wrapped.statusCode),
		).Inc()

		h.logger.WithFields(map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      wrapped.statusCode,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("Admin API request")
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.statusCode = code
	rec.ResponseWriter.WriteHeader(code)
}

// Response helpers

func (h *AdminAPIHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *AdminAPIHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string, err error) {
	response := map[string]interface{}{
		"error":     message,
		"status":    statusCode,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err != nil {
		h.logger.WithError(err).Error(message)
		response["details"] = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
