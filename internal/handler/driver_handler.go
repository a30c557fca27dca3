package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"loaddocs/internal/service"
)

// DriverHandler handles driver endpoints.
type DriverHandler struct {
	driverService service.DriverService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService service.DriverService) *DriverHandler {
	return &DriverHandler{driverService: driverService}
}

type createDriverRequest struct {
	FullName    string `json:"full_name" binding:"required"`
	PhoneNumber string `json:"phone_number"`
	Language    string `json:"language"`
}

// Create handles POST /drivers.
func (h *DriverHandler) Create(c *gin.Context) {
	var req createDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	driver, err := h.driverService.Create(c.Request.Context(), &service.CreateDriverInput{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Language:    req.Language,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, driver)
}

// GetByID handles GET /drivers/:id.
func (h *DriverHandler) GetByID(c *gin.Context) {
	driverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_DRIVER_ID", "driver id must be a UUID")
		return
	}

	driver, err := h.driverService.GetByID(c.Request.Context(), driverID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, driver)
}

// GetVerification handles GET /drivers/:id/verification.
func (h *DriverHandler) GetVerification(c *gin.Context) {
	driverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_DRIVER_ID", "driver id must be a UUID")
		return
	}

	verification, err := h.driverService.GetVerification(c.Request.Context(), driverID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, verification)
}

// ListDocuments handles GET /drivers/:id/documents.
func (h *DriverHandler) ListDocuments(c *gin.Context) {
	driverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_DRIVER_ID", "driver id must be a UUID")
		return
	}
	offset, limit := pagination(c)

	docs, total, err := h.driverService.ListDocuments(c.Request.Context(), driverID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, docs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if offset < 0 {
		offset = 0
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return offset, limit
}
