package booking

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"photostudio/internal/domain"
	"photostudio/internal/middleware"
	"photostudio/internal/pkg/response"
	"photostudio/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts client routes on rg and back-office routes on admin.
func (h *Handler) RegisterRoutes(rg, admin *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings/client", h.GetClientBookings)
	rg.GET("/bookings/locations", h.GetLocations)
	rg.PUT("/bookings/:id/reschedule", h.RescheduleBooking)
	rg.PATCH("/bookings/:id/cancel", h.CancelBooking)

	admin.GET("/admin/bookings", h.ListBookings)
	admin.GET("/admin/bookings/:id", h.GetBooking)
	admin.PUT("/admin/bookings/:id", h.UpdateBooking)
	admin.DELETE("/admin/bookings/:id", h.DeleteBooking)
	admin.PUT("/admin/bookings/:id/assign", h.AssignStaff)
	admin.PUT("/admin/bookings/:id/unassign", h.UnassignStaff)
	admin.GET("/admin/staff/:id/bookings", h.GetStaffBookings)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	clientID := c.GetString("user_id")
	if clientID == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	in, err := req.toInput(clientID, h.service.Location())
	if err != nil {
		h.fail(c, err)
		return
	}

	b, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, b)
}

func (h *Handler) GetClientBookings(c *gin.Context) {
	clientID := c.GetString("user_id")
	if clientID == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	out, err := h.service.ListForClient(c.Request.Context(), clientID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) GetLocations(c *gin.Context) {
	response.Success(c, http.StatusOK, h.service.Prices().Multipliers())
}

func (h *Handler) RescheduleBooking(c *gin.Context) {
	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	at, err := ParseDateTime(req.DateTime, h.service.Location())
	if err != nil {
		h.fail(c, err)
		return
	}

	b, err := h.service.Reschedule(c.Request.Context(), actorFrom(c), c.Param("id"), at)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) CancelBooking(c *gin.Context) {
	b, err := h.service.Cancel(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) ListBookings(c *gin.Context) {
	var f Filter
	if v := strings.TrimSpace(c.Query("status")); v != "" {
		s := domain.BookingStatus(strings.ToLower(v))
		f.Status = &s
	}
	if v := strings.TrimSpace(c.Query("payment_status")); v != "" {
		s := domain.PaymentStatus(strings.ToLower(v))
		f.PaymentStatus = &s
	}
	if v := c.Query("from"); v != "" {
		t, err := ParseDateTime(v, h.service.Location())
		if err != nil {
			h.fail(c, err)
			return
		}
		f.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := ParseDateTime(v, h.service.Location())
		if err != nil {
			h.fail(c, err)
			return
		}
		f.To = &t
	}

	out, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) GetBooking(c *gin.Context) {
	b, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) UpdateBooking(c *gin.Context) {
	var req AdminUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	in, err := req.toInput(h.service.Location())
	if err != nil {
		h.fail(c, err)
		return
	}

	b, err := h.service.AdminUpdate(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) DeleteBooking(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AssignStaff(c *gin.Context) {
	var req AssignStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.AssignStaff(c.Request.Context(), c.Param("id"), req.StaffID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) UnassignStaff(c *gin.Context) {
	b, err := h.service.UnassignStaff(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) GetStaffBookings(c *gin.Context) {
	out, err := h.service.ListForStaff(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func actorFrom(c *gin.Context) Actor {
	return Actor{
		UserID: c.GetString("user_id"),
		Admin:  c.GetString("role") == middleware.RoleAdmin,
	}
}

// fail writes the error envelope for err; rule violations carry their
// message, store failures do not.
func (h *Handler) fail(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		response.Error(c, status, code, "Booking store is temporarily unavailable")
		return
	}

	var fe *validator.FieldError
	if errors.As(err, &fe) {
		response.ErrorWithDetails(c, status, code, err.Error(), gin.H{"field": fe.Field, "rule": fe.Tag})
		return
	}
	response.Error(c, status, code, err.Error())
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrMalformedBooking), errors.Is(err, ErrInvalidLocation):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, ErrPastDate), errors.Is(err, ErrAdvanceWindow):
		return http.StatusUnprocessableEntity, "DATE_NOT_ALLOWED"
	case errors.Is(err, ErrRescheduleWindow), errors.Is(err, ErrCancellationWindow):
		return http.StatusUnprocessableEntity, "WINDOW_CLOSED"
	case errors.Is(err, ErrInvalidStatusTransition), errors.Is(err, ErrNotDeletable):
		return http.StatusConflict, "INVALID_STATUS"
	case errors.Is(err, ErrCapacityExceeded):
		return http.StatusConflict, "BOOKING_CONFLICT"
	case errors.Is(err, ErrNoAvailability):
		return http.StatusConflict, "NO_AVAILABILITY"
	case errors.Is(err, ErrConcurrencyConflict):
		return http.StatusConflict, "CONCURRENT_MODIFICATION"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	default:
		return http.StatusServiceUnavailable, "PERSISTENCE_ERROR"
	}
}
