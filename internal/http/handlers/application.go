package handlers

import (
	"net/http"
	"strings"
	"time"

	"farmlink/internal/app"
	"farmlink/internal/common"
	"farmlink/internal/domain/application"
	"farmlink/internal/domain/user"
	"farmlink/internal/http/middleware"
	"farmlink/internal/http/response"
)

type ApplicationHandler struct {
	applications *app.ApplicationService
	limiter      middleware.Limiter
}

func NewApplicationHandler(applications *app.ApplicationService, limiter middleware.Limiter) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, limiter: limiter}
}

type applyRequest struct {
	JobID string `json:"job_id"`
}

func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	workerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	jobID, err := jobIDFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	if h.limiter != nil {
		key := "apply:" + jobID.String() + ":" + workerID.String()
		if !h.limiter.Allow(key, 3, time.Minute) {
			response.Error(w, common.NewError(common.CodeRateLimited, "apply rate limit exceeded", nil))
			return
		}
	}
	created, err := h.applications.Apply(r.Context(), jobID, workerID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *ApplicationHandler) ListWorker(w http.ResponseWriter, r *http.Request) {
	workerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	items, err := h.applications.ListByWorker(r.Context(), workerID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *ApplicationHandler) ListFarmer(w http.ResponseWriter, r *http.Request) {
	farmerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	items, err := h.applications.ListByFarmer(r.Context(), farmerID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	activeRole, ok := middleware.ActiveRoleFromContext(r.Context())
	if !ok || activeRole == "" {
		response.Error(w, common.NewError(common.CodeForbidden, "role not selected", nil))
		return
	}
	switch activeRole {
	case user.RoleWorker:
		h.ListWorker(w, r)
	case user.RoleFarmer:
		h.ListFarmer(w, r)
	default:
		response.Error(w, common.NewError(common.CodeForbidden, "insufficient role", nil))
	}
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus dispatches the farmer's decision: accepted or rejected are
// the only statuses a caller may set directly.
func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	farmerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	applicationID, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	status := application.Status(strings.ToLower(strings.TrimSpace(req.Status)))
	switch status {
	case application.StatusAccepted:
		updated, err := h.applications.Accept(r.Context(), farmerID, applicationID)
		if err != nil {
			response.Error(w, err)
			return
		}
		response.JSON(w, http.StatusOK, updated)
	case application.StatusRejected:
		updated, err := h.applications.Reject(r.Context(), farmerID, applicationID)
		if err != nil {
			response.Error(w, err)
			return
		}
		response.JSON(w, http.StatusOK, updated)
	default:
		response.Error(w, common.NewValidationError("invalid status", map[string]string{"status": "status must be accepted or rejected"}))
	}
}

func jobIDFromRequest(r *http.Request) (common.UUID, error) {
	var req applyRequest
	if err := decodeJSON(r, &req); err != nil {
		return "", err
	}
	if strings.TrimSpace(req.JobID) == "" {
		return "", common.NewValidationError("invalid request", map[string]string{"job_id": "job_id is required"})
	}
	parsed, err := common.ParseUUID(req.JobID)
	if err != nil {
		return "", common.NewValidationError("invalid request", map[string]string{"job_id": "invalid uuid"})
	}
	return parsed, nil
}
