package tenants

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	tenantpkg "github.com/stewardhq/steward/pkg/tenant"
	"github.com/stewardhq/steward/pkg/tenantdb"
	svctenant "github.com/stewardhq/steward/svc/tenant"
)

type handlers struct {
	svc Service
}

type provisionRequest struct {
	Slug     string   `json:"slug"`
	Name     string   `json:"name"`
	Plan     string   `json:"plan"`
	Features []string `json:"features"`
}

// tenantResponse is the registry view. Connection target and credential
// never leave the service boundary.
type tenantResponse struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Plan      string    `json:"plan"`
	Features  []string  `json:"features,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(t *tenantpkg.Tenant) tenantResponse {
	return tenantResponse{
		ID:        t.ID.String(),
		Slug:      t.Slug,
		Name:      t.Name,
		Plan:      t.Plan,
		Features:  t.Features,
		Active:    t.Active,
		CreatedAt: t.CreatedAt,
	}
}

func (h *handlers) provision(w http.ResponseWriter, r *http.Request) {
	var req provisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	t, err := h.svc.Provision(r.Context(), svctenant.NewTenant{
		Slug:     req.Slug,
		Name:     req.Name,
		Plan:     req.Plan,
		Features: req.Features,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(t))
}

func (h *handlers) get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(t))
}

func (h *handlers) deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_identifier", "tenant id must be a UUID")
		return
	}
	if err := h.svc.Deactivate(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "id")
	if _, err := h.svc.Load(r.Context(), identifier); err != nil {
		writeServiceError(w, err)
		return
	}
	healthy := h.svc.HealthCheck(r.Context(), identifier)
	writeJSON(w, http.StatusOK, map[string]bool{"healthy": healthy})
}

// writeServiceError maps the error taxonomy to HTTP. Not-found, inactive,
// and provisioning failures get distinct statuses so operators can tell
// bad input from deliberate offboarding from infrastructure trouble.
func writeServiceError(w http.ResponseWriter, err error) {
	var pErr *tenantdb.ProvisioningError
	switch {
	case errors.Is(err, tenantpkg.ErrTenantNotFound):
		writeError(w, http.StatusNotFound, "tenant_not_found", "no tenant matches the identifier")
	case errors.Is(err, tenantpkg.ErrTenantInactive):
		writeError(w, http.StatusForbidden, "tenant_inactive", "tenant has been deactivated")
	case errors.Is(err, tenantpkg.ErrInvalidIdentifier):
		writeError(w, http.StatusUnprocessableEntity, "invalid_identifier", "identifier must be a UUID or a valid slug")
	case errors.Is(err, svctenant.ErrSlugTaken):
		writeError(w, http.StatusConflict, "slug_taken", "an active tenant already uses this slug")
	case errors.As(err, &pErr):
		writeJSON(w, http.StatusBadGateway, errorBody{
			Error:   "provisioning_failed",
			Message: "tenant database provisioning failed",
			Stage:   pErr.Stage,
			Partial: pErr.Partial,
		})
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Stage   string `json:"stage,omitempty"`
	Partial bool   `json:"partial,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
