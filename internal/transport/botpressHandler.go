package transport

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gericht/reservation-service/internal/entity"
	"github.com/gericht/reservation-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type BotpressHandler struct {
	reservationService service.ReservationService
	syncService        service.BotpressSyncService
	apiKey             string
}

func NewBotpressHandler(
	reservationService service.ReservationService,
	syncService service.BotpressSyncService,
	apiKey string,
) *BotpressHandler {
	return &BotpressHandler{
		reservationService: reservationService,
		syncService:        syncService,
		apiKey:             apiKey,
	}
}

// webhookRequest — типизированный конверт вебхука.
type webhookRequest struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

// stringField достает строку по любому из альтернативных имен поля,
// при необходимости заглядывая во вложенный объект.
func stringField(payload map[string]interface{}, nested string, keys ...string) string {
	if sub, ok := payload[nested].(map[string]interface{}); ok {
		for _, key := range keys {
			if val, ok := sub[key].(string); ok && val != "" {
				return val
			}
		}
	}
	for _, key := range keys {
		if val, ok := payload[key].(string); ok && val != "" {
			return val
		}
	}
	return ""
}

// intField — то же самое для числовых полей; боты шлют и числа, и строки.
func intField(payload map[string]interface{}, nested string, keys ...string) int {
	lookup := func(m map[string]interface{}, key string) (int, bool) {
		switch v := m[key].(type) {
		case float64:
			return int(v), true
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				return n, true
			}
		}
		return 0, false
	}

	if sub, ok := payload[nested].(map[string]interface{}); ok {
		for _, key := range keys {
			if n, ok := lookup(sub, key); ok {
				return n
			}
		}
	}
	for _, key := range keys {
		if n, ok := lookup(payload, key); ok {
			return n
		}
	}
	return 0
}

// Webhook обрабатывает конверт {type, payload} от чат-бота. Поля payload
// принимаются и в плоском, и во вложенном виде.
func (h *BotpressHandler) Webhook(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: err.Error()})
		return
	}

	if req.Type != "create_reservation" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Unknown webhook type",
		})
		return
	}

	email := stringField(req.Payload, "customer", "email")
	date := stringField(req.Payload, "reservation", "date")
	timeOfDay := stringField(req.Payload, "reservation", "time")
	partySize := intField(req.Payload, "reservation", "partySize")

	if email == "" || date == "" || timeOfDay == "" || partySize == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":  false,
			"message":  "Missing reservation fields",
			"received": req.Payload,
		})
		return
	}

	result, err := h.reservationService.CreateFromBotpress(c.Request.Context(), &service.BotpressCreateRequest{
		Email:       email,
		RawDateTime: entity.JoinDatetime(date, timeOfDay),
		PartySize:   partySize,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":               true,
		"reservationId":         result.ReservationID,
		"botpressReservationId": result.BotpressReservationID,
		"message":               "Reservation created successfully",
		"data":                  result,
	})
}

type botpressCreateBody struct {
	Email        string      `json:"email"`
	PartySize    interface{} `json:"partySize"`
	Datetime     string      `json:"datetime"`
	DateTime     string      `json:"dateTime"`
	CustomerName string      `json:"customerName"`
	Name         string      `json:"name"`
}

// CreateBotpressReservation — прямое создание по X-API-Key.
func (h *BotpressHandler) CreateBotpressReservation(c *gin.Context) {
	if h.apiKey != "" && c.GetHeader("X-API-Key") != h.apiKey {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid API key"})
		return
	}

	var body botpressCreateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: err.Error()})
		return
	}

	logrus.Infof("Received Botpress reservation request for %s", body.Email)

	rawDateTime := body.Datetime
	if rawDateTime == "" {
		rawDateTime = body.DateTime
	}
	if rawDateTime == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":  false,
			"message":  "Missing required field: datetime or dateTime",
			"received": body,
		})
		return
	}

	partySize := 0
	switch v := body.PartySize.(type) {
	case float64:
		partySize = int(v)
	case string:
		partySize, _ = strconv.Atoi(v)
	}

	email := strings.TrimSpace(body.Email)
	if email == "" || partySize == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":  false,
			"message":  "Missing or invalid fields: email or partySize",
			"received": body,
		})
		return
	}

	customerName := strings.TrimSpace(body.CustomerName)
	if customerName == "" {
		customerName = strings.TrimSpace(body.Name)
	}

	result, err := h.reservationService.CreateFromBotpress(c.Request.Context(), &service.BotpressCreateRequest{
		Email:        email,
		RawDateTime:  rawDateTime,
		PartySize:    partySize,
		CustomerName: customerName,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":       true,
		"id":            result.BotpressReservationID,
		"reservationId": result.ReservationID,
		"message":       "Botpress reservation created successfully",
		"data": gin.H{
			"email":        result.Email,
			"datetime":     result.Datetime,
			"partySize":    result.PartySize,
			"confNumber":   result.ConfNumber,
			"customerName": result.CustomerName,
		},
	})
}

// GetBotpressReservations возвращает зеркальные записи с данными
// канонической брони.
func (h *BotpressHandler) GetBotpressReservations(c *gin.Context) {
	reservations, err := h.syncService.GetAllBotpressReservations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservations)
}

func (h *BotpressHandler) UpdateBotpressReservationStatus(c *gin.Context) {
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

	if err := h.syncService.UpdateBotpressStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reservation status updated successfully"})
}

func (h *BotpressHandler) DeleteBotpressReservation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.syncService.DeleteBotpressReservation(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Botpress reservation deleted successfully"})
}
