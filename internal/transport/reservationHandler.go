package transport

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gericht/reservation-service/internal/entity"
	"github.com/gericht/reservation-service/internal/service"
	"github.com/gericht/reservation-service/internal/transport/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ReservationHandler struct {
	reservationService service.ReservationService
}

func NewReservationHandler(reservationService service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService}
}

// SuccessResponse представляет успешный ответ
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// respondError маппит доменные ошибки на HTTP статусы.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entity.ErrInvalidInput),
		errors.Is(err, entity.ErrInvalidStatus),
		errors.Is(err, entity.ErrReviewNotAllowed):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, entity.ErrUnauthorized),
		errors.Is(err, entity.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
	case errors.Is(err, entity.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "Access denied"})
	case errors.Is(err, entity.ErrReservationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Reservation not found"})
	case errors.Is(err, entity.ErrBotpressReservationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Reservation not found"})
	case errors.Is(err, entity.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
	case errors.Is(err, entity.ErrUserAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"message": "User with given email already exists!"})
	case errors.Is(err, entity.ErrBotpressUnavailable):
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	default:
		// Детали остаются в логах, клиенту уходит общее сообщение.
		logrus.Errorf("Unhandled error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid reservation ID"})
		return 0, false
	}
	return id, true
}

// CreateReservation создает бронирование от авторизованного клиента.
// Имя и email берутся из карточки пользователя, не из запроса.
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var req service.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	userID := c.GetString(middleware.ContextUserID)

	reservation, err := h.reservationService.CreateFromCustomer(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reservation)
}

// CreateBotReservation — неавторизованный путь создания от бота, без
// зеркальной записи.
func (h *ReservationHandler) CreateBotReservation(c *gin.Context) {
	var req service.BotCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	reservation, err := h.reservationService.CreateFromBot(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      reservation.ID,
		"data":    reservation,
		"message": "Reservation created successfully from Botpress",
	})
}

func (h *ReservationHandler) GetUserReservations(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	reservations, err := h.reservationService.GetUserReservations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservations)
}

func (h *ReservationHandler) UpdateReservation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req service.UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	userID := c.GetString(middleware.ContextUserID)

	if err := h.reservationService.Update(c.Request.Context(), id, userID, &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reservation updated"})
}

func (h *ReservationHandler) UpdateReservationStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req struct {
		Status entity.ReservationStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := h.reservationService.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reservation status updated"})
}

// SubmitReview принимает отзыв: только владелец и только для завершенных.
func (h *ReservationHandler) SubmitReview(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req struct {
		Rating  int    `json:"rating" binding:"required"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	userID := c.GetString(middleware.ContextUserID)

	if err := h.reservationService.SubmitReview(c.Request.Context(), id, userID, req.Rating, req.Comment); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review submitted successfully"})
}

func (h *ReservationHandler) DeleteReservation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.reservationService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reservation deleted"})
}

// CheckAvailability — публичная рекомендательная проверка слота.
func (h *ReservationHandler) CheckAvailability(c *gin.Context) {
	date := c.Query("date")
	timeOfDay := c.Query("time")

	partySize, err := strconv.Atoi(c.DefaultQuery("partySize", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid party size"})
		return
	}

	result, err := h.reservationService.CheckAvailability(c.Request.Context(), date, timeOfDay, partySize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
