package api

import (
	"github.com/gin-gonic/gin"

	"github.com/farai-coder/parklee-backend-official/internal/api/handler"
	"github.com/farai-coder/parklee-backend-official/internal/api/middleware"
	"github.com/farai-coder/parklee-backend-official/internal/service"
)

func SetupRouter(
	as *service.AuthService,
	ps *service.ParkingService,
	rs *service.ReservationService,
	ss *service.SessionService,
	es *service.EventService,
	reps *service.ReportService,
	lprService *service.LPRService,
	authMw *middleware.AuthMiddleware,
	wsManager *handler.WebSocketManager,
) *gin.Engine {
	r := gin.Default()
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// WebSocket endpoint (không cần auth cho real-time connection)
	wsHandler := handler.NewWebSocketHandler(wsManager)
	r.GET("/ws", wsHandler.HandleWebSocket)

	authHandler := handler.NewAuthHandler(as)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/set-password", authHandler.SetPassword)
		authRoutes.POST("/login", authHandler.Login)
	}

	v1 := r.Group("/api/v1")
	v1.Use(authMw.Authenticate())
	{
		v1.POST("/auth/change-password", authHandler.ChangePassword)

		userRoutes := v1.Group("/users")
		{
			userRoutes.GET("", authMw.AuthorizeRole("admin"), authHandler.GetAllUsers)
			userRoutes.GET("/:id", authHandler.GetUserByID)
		}

		parkingH := handler.NewParkingHandler(ps)
		zoneRoutes := v1.Group("/zones")
		{
			zoneRoutes.POST("", authMw.AuthorizeRole("admin"), parkingH.CreateZone)
			zoneRoutes.GET("", parkingH.GetAllZones)
			zoneRoutes.GET("/:id", parkingH.GetZoneByID)
			zoneRoutes.GET("/:id/spots", parkingH.GetSpotsByZone)
			zoneRoutes.PUT("/:id", authMw.AuthorizeRole("admin"), parkingH.UpdateZone)
			zoneRoutes.DELETE("/:id", authMw.AuthorizeRole("admin"), parkingH.DeleteZone)
		}

		spotRoutes := v1.Group("/spots")
		{
			spotRoutes.POST("", authMw.AuthorizeRole("admin"), parkingH.CreateSpot)
			spotRoutes.POST("/bulk-upload", authMw.AuthorizeRole("admin"), parkingH.BulkUploadSpots)
			spotRoutes.GET("", parkingH.GetAllSpots)
			spotRoutes.GET("/available", parkingH.GetAvailableSpots)
			spotRoutes.GET("/:id", parkingH.GetSpotByID)
			spotRoutes.PUT("/:id", authMw.AuthorizeRole("admin"), parkingH.UpdateSpot)
			spotRoutes.POST("/:id/reconcile", authMw.AuthorizeRole("admin"), parkingH.ReconcileSpotStatus)
			spotRoutes.DELETE("/:id", authMw.AuthorizeRole("admin"), parkingH.DeleteSpot)
		}

		reservationH := handler.NewReservationHandler(rs)
		reservationRoutes := v1.Group("/reservations")
		{
			reservationRoutes.POST("", reservationH.CreateReservation)
			reservationRoutes.POST("/cancel", reservationH.CancelReservation)
			reservationRoutes.GET("", reservationH.GetReservations)
			reservationRoutes.GET("/:id", reservationH.GetReservationByID)
		}

		sessionH := handler.NewSessionHandler(ss)
		sessionRoutes := v1.Group("/sessions")
		{
			sessionRoutes.POST("/check-in", sessionH.CheckIn)
			sessionRoutes.POST("/check-out", sessionH.CheckOut)
			sessionRoutes.GET("", authMw.AuthorizeRole("admin", "staff"), sessionH.GetAllSessions)
			sessionRoutes.GET("/:id", sessionH.GetSessionByID)
		}

		eventH := handler.NewEventHandler(es)
		eventRoutes := v1.Group("/events")
		{
			eventRoutes.POST("", authMw.AuthorizeRole("admin"), eventH.CreateEvent)
			eventRoutes.GET("", eventH.GetAllEvents)
			eventRoutes.GET("/today", eventH.GetTodaysEvents)
			eventRoutes.GET("/:id", eventH.GetEventByID)
			eventRoutes.DELETE("/:id", authMw.AuthorizeRole("admin"), eventH.DeleteEvent)
		}

		reportH := handler.NewReportHandler(reps)
		reportRoutes := v1.Group("/reports")
		reportRoutes.Use(authMw.AuthorizeRole("admin", "staff"))
		{
			reportRoutes.POST("", reportH.CreateReport)
			reportRoutes.GET("", reportH.GetAllReports)
			reportRoutes.GET("/:id", reportH.GetReportByID)
			reportRoutes.PUT("/:id", reportH.UpdateReport)
		}

		v1.GET("/analytics/counts", authMw.AuthorizeRole("admin"), parkingH.GetSystemCounts)

		if lprService != nil {
			lprH := handler.NewLPRHandler(lprService)
			lprRoutes := v1.Group("/lpr")
			lprRoutes.Use(authMw.AuthorizeRole("admin", "staff"))
			{
				lprRoutes.POST("/check-in", lprH.ProcessCheckIn)
			}
		}
	}
	return r
}
