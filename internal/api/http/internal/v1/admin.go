package v1

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/souqly/backend/internal/domain"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func (h *Handler) initAdminRoutes(api *gin.RouterGroup) {
	admin := api.Group("/admin", h.userIdentityMiddleware, h.adminIdentityMiddleware)

	requests := admin.Group("/verification/requests")
	requests.GET("", h.adminListRequests)
	requests.GET("/:id", h.adminGetRequest)
	requests.POST("/:id/approve", h.adminApproveRequest)
	requests.POST("/:id/reject", h.adminRejectRequest)
	requests.GET("/:id/documents/:kind", h.adminDocumentContent)
}

type adminRequestResponse struct {
	ID                        string                     `json:"id"`
	UserID                    string                     `json:"user_id"`
	Status                    string                     `json:"status"`
	SubmittedAt               time.Time                  `json:"submitted_at"`
	PhoneVerifiedAtSubmission bool                       `json:"phone_verified_at_submission"`
	Documents                 domain.DocumentSnapshotMap `json:"documents"`
	Business                  *domain.BusinessSnapshot   `json:"business,omitempty"`
	ReviewedAt                *time.Time                 `json:"reviewed_at,omitempty"`
	ReviewedBy                string                     `json:"reviewed_by,omitempty"`
	ReviewNotes               string                     `json:"review_notes,omitempty"`
}

func toAdminRequestResponse(r *domain.VerificationRequest) adminRequestResponse {
	response := adminRequestResponse{
		ID:                        r.ID.String(),
		UserID:                    r.UserID.String(),
		Status:                    string(r.Status),
		SubmittedAt:               r.SubmittedAt,
		PhoneVerifiedAtSubmission: r.PhoneVerifiedAtSubmission,
		Documents:                 r.DocumentsSnapshot,
		Business:                  r.BusinessSnapshot,
		ReviewedAt:                r.ReviewedAt,
	}
	if r.ReviewedBy != nil {
		response.ReviewedBy = r.ReviewedBy.String()
	}
	if r.ReviewNotes.Valid {
		response.ReviewNotes = r.ReviewNotes.String
	}
	return response
}

type adminListResponse struct {
	Requests []adminRequestResponse `json:"requests"`
	Total    int64                  `json:"total"`
	Page     int                    `json:"page"`
	Limit    int                    `json:"limit"`
}

// @Summary List verification requests
// @Tags Admin
// @Description Review queue, optionally filtered by status
// @ModuleID adminListRequests
// @Produce json
// @Param status query string false "request status" Enums(under_review, approved, rejected)
// @Param page query int false "page number, 1-based"
// @Param limit query int false "page size"
// @Success 200 {object} adminListResponse
// @Failure 400 {object} ErrorStruct
// @Failure 401
// @Failure 403
// @Security AdminAuth
// @Router /admin/verification/requests [get]
func (h *Handler) adminListRequests(c *gin.Context) {
	var statusFilter *domain.RequestStatus
	if raw := c.Query("status"); raw != "" {
		status, ok := domain.ParseRequestStatus(raw)
		if !ok {
			newResponse(c, http.StatusBadRequest, "unknown status filter")
			return
		}
		statusFilter = &status
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if err != nil || limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	requests, total, err := h.services.Reviews.List(c.Request.Context(), statusFilter, page, limit)
	if err != nil {
		errorResponse(c, err)
		return
	}

	response := adminListResponse{
		Requests: make([]adminRequestResponse, 0, len(requests)),
		Total:    total,
		Page:     page,
		Limit:    limit,
	}
	for i := range requests {
		response.Requests = append(response.Requests, toAdminRequestResponse(&requests[i]))
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Get verification request
// @Tags Admin
// @ModuleID adminGetRequest
// @Produce json
// @Param id path string true "request id"
// @Success 200 {object} adminRequestResponse
// @Failure 400 {object} ErrorStruct
// @Failure 401
// @Failure 403
// @Failure 404 {object} ErrorStruct
// @Security AdminAuth
// @Router /admin/verification/requests/{id} [get]
func (h *Handler) adminGetRequest(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newResponse(c, http.StatusBadRequest, "invalid request id")
		return
	}

	request, err := h.services.Reviews.GetOneByID(c.Request.Context(), requestID)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, toAdminRequestResponse(request))
}

type reviewDecisionRequest struct {
	Notes string `json:"notes"`
}

// @Summary Approve verification request
// @Tags Admin
// @Description Finalize the request as approved and mark the user verified
// @ModuleID adminApproveRequest
// @Accept json
// @Produce json
// @Param id path string true "request id"
// @Param input body reviewDecisionRequest false "optional review notes"
// @Success 204
// @Failure 400 {object} ErrorStruct
// @Failure 401
// @Failure 403
// @Failure 404 {object} ErrorStruct
// @Failure 409 {object} ErrorStruct
// @Security AdminAuth
// @Router /admin/verification/requests/{id}/approve [post]
func (h *Handler) adminApproveRequest(c *gin.Context) {
	h.finalizeRequest(c, h.services.Reviews.Approve)
}

// @Summary Reject verification request
// @Tags Admin
// @Description Finalize the request as rejected with reviewer notes
// @ModuleID adminRejectRequest
// @Accept json
// @Produce json
// @Param id path string true "request id"
// @Param input body reviewDecisionRequest false "optional review notes"
// @Success 204
// @Failure 400 {object} ErrorStruct
// @Failure 401
// @Failure 403
// @Failure 404 {object} ErrorStruct
// @Failure 409 {object} ErrorStruct
// @Security AdminAuth
// @Router /admin/verification/requests/{id}/reject [post]
func (h *Handler) adminRejectRequest(c *gin.Context) {
	h.finalizeRequest(c, h.services.Reviews.Reject)
}

func (h *Handler) finalizeRequest(c *gin.Context, decide func(ctx context.Context, requestID, reviewerID uuid.UUID, notes string) error) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newResponse(c, http.StatusBadRequest, "invalid request id")
		return
	}

	reviewerID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, err.Error())
		return
	}

	var req reviewDecisionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			newResponse(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	if err := decide(c.Request.Context(), requestID, reviewerID, req.Notes); err != nil {
		errorResponse(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Download a submitted document
// @Tags Admin
// @Description Raw document bytes from the submission snapshot
// @ModuleID adminDocumentContent
// @Produce octet-stream
// @Param id path string true "request id"
// @Param kind path string true "document kind" Enums(id_card, business_license)
// @Success 200
// @Failure 400 {object} ErrorStruct
// @Failure 401
// @Failure 403
// @Failure 404 {object} ErrorStruct
// @Security AdminAuth
// @Router /admin/verification/requests/{id}/documents/{kind} [get]
func (h *Handler) adminDocumentContent(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newResponse(c, http.StatusBadRequest, "invalid request id")
		return
	}

	kind, ok := domain.ParseDocumentKind(c.Param("kind"))
	if !ok {
		newResponse(c, http.StatusBadRequest, "unknown document kind")
		return
	}

	data, mimeType, err := h.services.Reviews.DocumentContent(c.Request.Context(), requestID, kind)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.Data(http.StatusOK, mimeType, data)
}
