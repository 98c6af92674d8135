package transport

import (
	"github.com/gericht/reservation-service/internal/transport/middleware"
	"github.com/gin-gonic/gin"
)

func InitRoutes(
	reservationHandler *ReservationHandler,
	botpressHandler *BotpressHandler,
	adminHandler *AdminHandler,
	authHandler *AuthHandler,
	tokenParser middleware.TokenParser,
) *gin.Engine {

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(30))

	auth := middleware.Auth(tokenParser)
	admin := middleware.Admin()

	api := router.Group("/api")
	{
		api.POST("/auth", authHandler.Login)
		api.POST("/users", authHandler.Register)

		// Reservation routes
		reservations := api.Group("/reservations")
		{
			reservations.GET("/availability", reservationHandler.CheckAvailability)
			reservations.POST("/bot", reservationHandler.CreateBotReservation)

			reservations.POST("", auth, reservationHandler.CreateReservation)
			reservations.GET("/user", auth, reservationHandler.GetUserReservations)
			reservations.PUT("/:id", auth, reservationHandler.UpdateReservation)
			reservations.PATCH("/:id/status", auth, reservationHandler.UpdateReservationStatus)
			reservations.PUT("/:id/review", auth, reservationHandler.SubmitReview)
			reservations.DELETE("/:id", auth, reservationHandler.DeleteReservation)
		}

		// Chatbot ingress
		api.POST("/botpress/webhook", botpressHandler.Webhook)

		botpressReservations := api.Group("/botpress-reservations")
		{
			botpressReservations.POST("", botpressHandler.CreateBotpressReservation)
			botpressReservations.GET("", auth, admin, botpressHandler.GetBotpressReservations)
			botpressReservations.PATCH("/:id/status", auth, admin, botpressHandler.UpdateBotpressReservationStatus)
			botpressReservations.DELETE("/:id", auth, admin, botpressHandler.DeleteBotpressReservation)
		}

		// Admin routes
		adminGroup := api.Group("/admin")
		{
			adminGroup.POST("/create-admin", adminHandler.CreateAdmin)

			adminGroup.GET("/reservations", auth, admin, adminHandler.GetAllReservations)
			adminGroup.GET("/reservations/stats", auth, admin, adminHandler.GetStats)
			adminGroup.GET("/reservations/:id", auth, admin, adminHandler.GetReservation)
			adminGroup.PUT("/reservations/:id", auth, admin, adminHandler.UpdateReservation)
			adminGroup.PATCH("/reservations/:id/status", auth, admin, adminHandler.UpdateReservationStatus)
			adminGroup.DELETE("/reservations/:id", auth, admin, adminHandler.DeleteReservation)

			adminGroup.POST("/sync-users", auth, admin, adminHandler.SyncUsers)
			adminGroup.POST("/sync-to-botpress", auth, admin, adminHandler.SyncToBotpress)
			adminGroup.POST("/sync-from-botpress", auth, admin, adminHandler.SyncFromBotpress)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return router
}
