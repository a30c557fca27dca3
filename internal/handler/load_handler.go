package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"loaddocs/internal/service"
)

// LoadHandler handles load endpoints.
type LoadHandler struct {
	loadService service.LoadService
}

// NewLoadHandler creates a new LoadHandler.
func NewLoadHandler(loadService service.LoadService) *LoadHandler {
	return &LoadHandler{loadService: loadService}
}

type createLoadRequest struct {
	Origin           *string `json:"origin"`
	Destination      *string `json:"destination"`
	RateCents        *int64  `json:"rate_cents"`
	AssignedDriverID *string `json:"assigned_driver_id"`
}

// Create handles POST /loads.
func (h *LoadHandler) Create(c *gin.Context) {
	var req createLoadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	input := &service.CreateLoadInput{
		Origin:      req.Origin,
		Destination: req.Destination,
		RateCents:   req.RateCents,
	}
	if req.AssignedDriverID != nil {
		driverID, err := uuid.Parse(*req.AssignedDriverID)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_DRIVER_ID", "assigned_driver_id must be a UUID")
			return
		}
		input.AssignedDriverID = &driverID
	}

	load, err := h.loadService.Create(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, load)
}

// GetByID handles GET /loads/:id.
func (h *LoadHandler) GetByID(c *gin.Context) {
	loadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_LOAD_ID", "load id must be a UUID")
		return
	}

	load, err := h.loadService.GetByID(c.Request.Context(), loadID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, load)
}

// GetVerification handles GET /loads/:id/verification.
func (h *LoadHandler) GetVerification(c *gin.Context) {
	loadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_LOAD_ID", "load id must be a UUID")
		return
	}

	verification, err := h.loadService.GetVerification(c.Request.Context(), loadID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, verification)
}
