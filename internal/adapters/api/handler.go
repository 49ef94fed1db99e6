// Package api exposes the zone management HTTP surface.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/poyrazK/zonecontrol/internal/core/domain"
	"github.com/poyrazK/zonecontrol/internal/core/ports"
	"github.com/poyrazK/zonecontrol/internal/infrastructure/metrics"
)

// APIHandler handles HTTP requests for zone change management.
type APIHandler struct {
	svc      ports.ZoneService
	users    ports.UserRepository
	groups   ports.GroupRepository
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAPIHandler creates and returns a new APIHandler instance.
func NewAPIHandler(svc ports.ZoneService, users ports.UserRepository, groups ports.GroupRepository, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		svc:      svc,
		users:    users,
		groups:   groups,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// RegisterRoutes registers the API routes with the provided ServeMux.
func (h *APIHandler) RegisterRoutes(mux *http.ServeMux) {
	// Public routes
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /metrics", h.Metrics)

	auth := AuthMiddleware(h.users, h.groups)

	// Zone change routes; mutations return 202 with the pending change.
	mux.Handle("POST /zones", auth(h.timed("connect_zone", h.ConnectZone)))
	mux.Handle("GET /zones", auth(h.timed("list_zones", h.ListZones)))
	mux.Handle("GET /zones/{id}", auth(h.timed("get_zone", h.GetZone)))
	mux.Handle("PUT /zones/{id}", auth(h.timed("update_zone", h.UpdateZone)))
	mux.Handle("DELETE /zones/{id}", auth(h.timed("delete_zone", h.DeleteZone)))
	mux.Handle("POST /zones/{id}/sync", auth(h.timed("sync_zone", h.SyncZone)))
	mux.Handle("GET /zones/{id}/changes", auth(h.timed("list_zone_changes", h.ListZoneChanges)))
	mux.Handle("PUT /zones/{id}/acl/rules", auth(h.timed("add_acl_rule", h.AddACLRule)))
	mux.Handle("DELETE /zones/{id}/acl/rules", auth(h.timed("delete_acl_rule", h.DeleteACLRule)))
}

func (h *APIHandler) timed(route string, fn http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		fn(w, r)
		metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Metrics handles Prometheus metrics scraping requests.
func (h *APIHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// HealthCheck handles health check requests.
func (h *APIHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "UP"
	details := make(map[string]string)
	for name, checkErr := range h.svc.HealthCheck(r.Context()) {
		if checkErr != nil {
			status = "DEGRADED"
			details[name] = checkErr.Error()
		} else {
			details[name] = "OK"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if status == "DEGRADED" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	h.writeJSON(w, map[string]interface{}{"status": status, "details": details})
}

// zoneRequest is the payload for connect and update operations.
type zoneRequest struct {
	Name               string                 `json:"name" validate:"required"`
	Email              string                 `json:"email" validate:"required,email"`
	AdminGroupID       string                 `json:"adminGroupId" validate:"required"`
	Shared             bool                   `json:"shared"`
	Connection         *domain.ZoneConnection `json:"connection"`
	TransferConnection *domain.ZoneConnection `json:"transferConnection"`
	ACL                domain.ZoneACL         `json:"acl"`
}

func (req zoneRequest) toZone() domain.Zone {
	return domain.Zone{
		Name:               req.Name,
		Email:              req.Email,
		AdminGroupID:       req.AdminGroupID,
		Shared:             req.Shared,
		Connection:         req.Connection,
		TransferConnection: req.TransferConnection,
		ACL:                req.ACL,
	}
}

func (h *APIHandler) ConnectZone(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing principal", http.StatusUnauthorized)
		return
	}

	var req zoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "Invalid zone: "+err.Error(), http.StatusBadRequest)
		return
	}

	change, err := h.svc.ConnectZone(r.Context(), req.toZone(), p)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeAccepted(w, change)
}

func (h *APIHandler) UpdateZone(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing principal", http.StatusUnauthorized)
		return
	}

	var req zoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "Invalid zone: "+err.Error(), http.StatusBadRequest)
		return
	}

	zone := req.toZone()
	zone.ID = r.PathValue("id")

	change, err := h.svc.UpdateZone(r.Context(), zone, p)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeAccepted(w, change)
}

func (h *APIHandler) DeleteZone(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing principal", http.StatusUnauthorized)
		return
	}

	change, err := h.svc.DeleteZone(r.Context(), r.PathValue("id"), p)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeAccepted(w, change)
}

func (h *APIHandler) SyncZone(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing principal", http.StatusUnauthorized)
		return
	}

	change, err := h.svc.SyncZone(r.Context(), r.PathValue("id"), p)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeAccepted(w, change)
}

func (h *APIHandler) GetZone(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing principal", http.StatusUnauthorized)
		return
	}

	info, err := h.svc.GetZone(r.Context(), r.PathValue("id"), p)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	h.writeJSON(w, info)
}

func (h *APIHandler) ListZones(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing principal", http.StatusUnauthorized)
		return
	}

	var nameFilter *string
	if f := r.URL.Query().Get("nameFilter"); f != "" {
		nameFilter = &f
	}
	startFrom, err := optionalIntParam(r, "startFrom")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	maxItems, err := intParam(r, "maxItems", 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.svc.ListZones(r.Context(), p, nameFilter, startFrom, maxItems)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	h.writeJSON(w, resp)
}

func (h *APIHandler) ListZoneChanges(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing principal", http.StatusUnauthorized)
		return
	}

	startFrom, err := optionalIntParam(r, "startFrom")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	maxItems, err := intParam(r, "maxItems", 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.svc.ListZoneChanges(r.Context(), r.PathValue("id"), p, startFrom, maxItems)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	h.writeJSON(w, resp)
}

func (h *APIHandler) AddACLRule(w http.ResponseWriter, r *http.Request) {
	h.changeACLRule(w, r, h.svc.AddACLRule)
}

func (h *APIHandler) DeleteACLRule(w http.ResponseWriter, r *http.Request) {
	h.changeACLRule(w, r, h.svc.DeleteACLRule)
}

func (h *APIHandler) changeACLRule(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, zoneID string, rule domain.ACLRule, p domain.AuthPrincipal) (*domain.ZoneChange, error)) {
	p, ok := principalFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing principal", http.StatusUnauthorized)
		return
	}

	var rule domain.ACLRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	change, err := op(r.Context(), r.PathValue("id"), rule, p)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeAccepted(w, change)
}

// writeError maps domain errors onto HTTP statuses.
func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	var (
		exists       *domain.ZoneAlreadyExistsError
		notFound     *domain.ZoneNotFoundError
		notAuthz     *domain.NotAuthorizedError
		invalidAdmin *domain.InvalidZoneAdminError
		invalidReq   *domain.InvalidRequestError
		connFailed   *domain.ConnectionFailedError
	)
	switch {
	case errors.As(err, &exists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &notFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &notAuthz):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.As(err, &invalidAdmin), errors.As(err, &invalidReq), errors.As(err, &connFailed):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("request failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *APIHandler) writeAccepted(w http.ResponseWriter, change *domain.ZoneChange) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	h.writeJSON(w, change)
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func optionalIntParam(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return nil, errors.New("invalid " + name + " parameter")
	}
	return &v, nil
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.New("invalid " + name + " parameter")
	}
	return v, nil
}
