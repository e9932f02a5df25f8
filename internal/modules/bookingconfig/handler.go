package bookingconfig

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"photostudio/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts read access on rg and write access on admin.
func (h *Handler) RegisterRoutes(rg, admin *gin.RouterGroup) {
	rg.GET("/bookings/config", h.GetConfig)
	admin.PUT("/bookings/config", h.UpdateConfig)
}

func (h *Handler) GetConfig(c *gin.Context) {
	cfg, err := h.service.Get(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, cfg)
}

func (h *Handler) UpdateConfig(c *gin.Context) {
	var p Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	cfg, err := h.service.Update(c.Request.Context(), p)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, cfg)
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidConfig):
		response.Error(c, http.StatusUnprocessableEntity, "INVALID_CONFIG", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "CONCURRENT_MODIFICATION", err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process booking configuration")
	}
}
