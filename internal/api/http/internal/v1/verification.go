package v1

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/souqly/backend/internal/domain"
	"github.com/souqly/backend/internal/service"
)

func (h *Handler) initVerificationRoutes(api *gin.RouterGroup) {
	verification := api.Group("/verification", h.userIdentityMiddleware)

	verification.GET("/status", h.verificationStatus)
	verification.POST("/submit", h.verificationSubmit)
	verification.POST("/resubmit", h.verificationResubmit)
	verification.PUT("/business-profile", h.updateBusinessProfile)

	documents := verification.Group("/documents")
	documents.GET("", h.listDocuments)
	documents.POST("/:kind", h.uploadDocument)
	documents.DELETE("/:kind", h.removeDocument)

	phone := verification.Group("/phone")
	phone.POST("/request", h.requestPhoneCode)
	phone.POST("/confirm", h.confirmPhoneCode)
}

// @Summary Verification status
// @Tags Verification
// @Description Current verification state with missing requirements
// @ModuleID verificationStatus
// @Produce json
// @Success 200 {object} service.StatusResult
// @Failure 401
// @Failure 404 {object} ErrorStruct
// @Security UserAuth
// @Router /verification/status [get]
func (h *Handler) verificationStatus(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, err.Error())
		return
	}

	result, err := h.services.Verifications.Status(c.Request.Context(), userID)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type submitResponse struct {
	RequestID   string    `json:"request_id"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// @Summary Submit for review
// @Tags Verification
// @Description Snapshot the profile and open a verification request
// @ModuleID verificationSubmit
// @Produce json
// @Success 201 {object} submitResponse
// @Failure 400 {object} ErrorStruct
// @Failure 401
// @Failure 409 {object} ErrorStruct
// @Security UserAuth
// @Router /verification/submit [post]
func (h *Handler) verificationSubmit(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, err.Error())
		return
	}

	request, err := h.services.Verifications.Submit(c.Request.Context(), userID)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, submitResponse{
		RequestID:   request.ID.String(),
		Status:      string(request.Status),
		SubmittedAt: request.SubmittedAt,
	})
}

// @Summary Reset after rejection
// @Tags Verification
// @Description Clear staged documents so the user can start over
// @ModuleID verificationResubmit
// @Produce json
// @Success 204
// @Failure 401
// @Failure 409 {object} ErrorStruct
// @Security UserAuth
// @Router /verification/resubmit [post]
func (h *Handler) verificationResubmit(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, err.Error())
		return
	}

	if err := h.services.Verifications.ResetForResubmission(c.Request.Context(), userID); err != nil {
		errorResponse(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type businessProfileRequest struct {
	Location string `json:"location" binding:"required"`
	Business *struct {
		Name          string `json:"name"`
		Description   string `json:"description"`
		LicenseNumber string `json:"license_number"`
	} `json:"business"`
}

// @Summary Update verification profile
// @Tags Verification
// @Description Set location and, for business accounts, business details
// @ModuleID updateBusinessProfile
// @Accept json
// @Produce json
// @Param input body businessProfileRequest true "profile fields"
// @Success 204
// @Failure 400 {object} ErrorStruct
// @Failure 401
// @Security UserAuth
// @Router /verification/business-profile [put]
func (h *Handler) updateBusinessProfile(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, err.Error())
		return
	}

	var req businessProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	input := service.ProfileInput{Location: req.Location}
	if req.Business != nil {
		input.Business = &domain.BusinessProfile{
			Name:        req.Business.Name,
			Description: req.Business.Description,
			LicenseNo:   req.Business.LicenseNumber,
			Location:    req.Location,
		}
	}

	if err := h.services.Verifications.UpdateProfile(c.Request.Context(), userID, input); err != nil {
		errorResponse(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type documentResponse struct {
	Kind       string    `json:"kind"`
	Status     string    `json:"status"`
	Name       string    `json:"name"`
	SizeBytes  int64     `json:"size_bytes"`
	MimeType   string    `json:"mime_type"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func toDocumentResponse(doc *domain.UserDocument) documentResponse {
	return documentResponse{
		Kind:       string(doc.Kind),
		Status:     string(doc.Status),
		Name:       doc.Name,
		SizeBytes:  doc.SizeBytes,
		MimeType:   doc.MimeType,
		UploadedAt: doc.UploadedAt,
	}
}

// @Summary List staged documents
// @Tags Documents
// @ModuleID listDocuments
// @Produce json
// @Success 200 {array} documentResponse
// @Failure 401
// @Security UserAuth
// @Router /verification/documents [get]
func (h *Handler) listDocuments(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, err.Error())
		return
	}

	docs, err := h.services.Documents.List(c.Request.Context(), userID)
	if err != nil {
		errorResponse(c, err)
		return
	}

	response := make([]documentResponse, 0, len(docs))
	for i := range docs {
		response = append(response, toDocumentResponse(&docs[i]))
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Upload a document
// @Tags Documents
// @Description Stage an identity or license document for verification
// @ModuleID uploadDocument
// @Accept mpfd
// @Produce json
// @Param kind path string true "document kind" Enums(id_card, business_license)
// @Param file formData file true "document file"
// @Success 201 {object} documentResponse
// @Failure 400 {object} ErrorStruct
// @Failure 401
// @Failure 409 {object} ErrorStruct
// @Security UserAuth
// @Router /verification/documents/{kind} [post]
func (h *Handler) uploadDocument(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, err.Error())
		return
	}

	kind, ok := domain.ParseDocumentKind(c.Param("kind"))
	if !ok {
		newResponse(c, http.StatusBadRequest, "unknown document kind")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		newResponse(c, http.StatusBadRequest, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		newResponse(c, http.StatusBadRequest, "cannot open uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxDocumentSizeBytes+1))
	if err != nil {
		newResponse(c, http.StatusBadRequest, "cannot read uploaded file")
		return
	}

	doc, err := h.services.Documents.Stage(c.Request.Context(), userID, service.StageDocumentInput{
		Kind:     kind,
		Name:     fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Data:     data,
	})
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, toDocumentResponse(doc))
}

// @Summary Remove a staged document
// @Tags Documents
// @ModuleID removeDocument
// @Produce json
// @Param kind path string true "document kind" Enums(id_card, business_license)
// @Success 204
// @Failure 400 {object} ErrorStruct
// @Failure 401
// @Failure 404 {object} ErrorStruct
// @Failure 409 {object} ErrorStruct
// @Security UserAuth
// @Router /verification/documents/{kind} [delete]
func (h *Handler) removeDocument(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, err.Error())
		return
	}

	kind, ok := domain.ParseDocumentKind(c.Param("kind"))
	if !ok {
		newResponse(c, http.StatusBadRequest, "unknown document kind")
		return
	}

	if err := h.services.Documents.Remove(c.Request.Context(), userID, kind); err != nil {
		errorResponse(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type requestPhoneCodeRequest struct {
	PhoneNumber string `json:"phone_number" binding:"omitempty,phonenumber"`
}

// @Summary Request phone confirmation code
// @Tags Phone
// @Description Send a confirmation code, optionally to a new phone number
// @ModuleID requestPhoneCode
// @Accept json
// @Produce json
// @Param input body requestPhoneCodeRequest false "optional new phone number"
// @Success 204
// @Failure 400 {object} ErrorStruct
// @Failure 401
// @Failure 409 {object} ErrorStruct
// @Security UserAuth
// @Router /verification/phone/request [post]
func (h *Handler) requestPhoneCode(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, err.Error())
		return
	}

	var req requestPhoneCodeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			newResponse(c, http.StatusBadRequest, "invalid phone number")
			return
		}
	}

	if err := h.services.Phone.RequestCode(c.Request.Context(), userID, req.PhoneNumber); err != nil {
		errorResponse(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type confirmPhoneRequest struct {
	Code string `json:"code" binding:"required"`
}

// @Summary Confirm phone number
// @Tags Phone
// @ModuleID confirmPhoneCode
// @Accept json
// @Produce json
// @Param input body confirmPhoneRequest true "confirmation code"
// @Success 204
// @Failure 400 {object} ErrorStruct
// @Failure 401
// @Failure 409 {object} ErrorStruct
// @Security UserAuth
// @Router /verification/phone/confirm [post]
func (h *Handler) confirmPhoneCode(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		newResponse(c, http.StatusUnauthorized, err.Error())
		return
	}

	var req confirmPhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.services.Phone.ConfirmCode(c.Request.Context(), userID, req.Code); err != nil {
		errorResponse(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
