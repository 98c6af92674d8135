package transport

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gericht/reservation-service/internal/entity"
	"github.com/gericht/reservation-service/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	reservationService service.ReservationService
	syncService        service.BotpressSyncService
	userService        service.UserService
	adminCreationKey   string
}

func NewAdminHandler(
	reservationService service.ReservationService,
	syncService service.BotpressSyncService,
	userService service.UserService,
	adminCreationKey string,
) *AdminHandler {
	return &AdminHandler{
		reservationService: reservationService,
		syncService:        syncService,
		userService:        userService,
		adminCreationKey:   adminCreationKey,
	}
}

// GetAllReservations возвращает бронирования с опциональными фильтрами.
func (h *AdminHandler) GetAllReservations(c *gin.Context) {
	filter := &entity.ReservationFilter{
		Status:       entity.ReservationStatus(c.Query("status")),
		Date:         c.Query("date"),
		Email:        c.Query("email"),
		CustomerName: c.Query("customerName"),
	}

	reservations, err := h.reservationService.GetAll(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservations)
}

// GetStats возвращает агрегаты для дашборда.
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.reservationService.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) GetReservation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	reservation, err := h.reservationService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

func (h *AdminHandler) UpdateReservation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req service.AdminUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := h.reservationService.UpdateAdmin(c.Request.Context(), id, &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reservation updated successfully"})
}

func (h *AdminHandler) UpdateReservationStatus(c *gin.Context) {
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

	if !entity.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status"})
		return
	}

	if err := h.reservationService.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reservation status updated successfully"})
}

func (h *AdminHandler) DeleteReservation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.reservationService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reservation deleted successfully"})
}

// SyncUsers запускает перенос имен пользователей в бронирования.
func (h *AdminHandler) SyncUsers(c *gin.Context) {
	updated, err := h.userService.SyncUserNames(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Sync failed", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("User data synced successfully, %d reservations updated", updated),
	})
}

func (h *AdminHandler) SyncToBotpress(c *gin.Context) {
	synced, err := h.syncService.SyncToBotpress(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Sync failed", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Successfully synced %d reservations to Botpress", synced),
	})
}

func (h *AdminHandler) SyncFromBotpress(c *gin.Context) {
	synced, err := h.syncService.SyncFromBotpress(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Sync failed", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Successfully synced %d reservations from Botpress", synced),
	})
}

type createAdminRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	AdminKey  string `json:"adminKey" binding:"required"`
}

// CreateAdmin — одноразовое создание администратора по ключу из конфига.
func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	var req createAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if req.AdminKey != h.adminCreationKey {
		c.JSON(http.StatusForbidden, gin.H{"message": "Invalid admin creation key"})
		return
	}

	user, err := h.userService.CreateAdmin(c.Request.Context(), &service.RegisterRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		// Существующий email на этом маршруте отдается как 400.
		if errors.Is(err, entity.ErrUserAlreadyExists) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Admin user already exists"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Admin user created successfully",
		"user": gin.H{
			"id":        user.ID,
			"firstName": user.FirstName,
			"lastName":  user.LastName,
			"email":     user.Email,
			"role":      user.Role,
		},
	})
}
