package routes

import (
	"github.com/antoniodjones/pours-consumer/controllers"
	"github.com/antoniodjones/pours-consumer/middlewares"
	"github.com/antoniodjones/pours-consumer/services"

	"github.com/gin-gonic/gin"
)

// Deps carries the wired services into the router. Construction happens
// in main so the idle sweeper can share the session service.
type Deps struct {
	Sessions   *services.SessionService
	Biometrics *services.BiometricsService
	Alerts     *services.AlertService
	Hub        *services.RealtimeHub
	Push       *services.PushService
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.Default()

	sessionCtrl := controllers.NewSessionController(d.Sessions)
	bioCtrl := controllers.NewBiometricsController(d.Biometrics)
	alertCtrl := controllers.NewAlertController(d.Alerts)
	deviceCtrl := controllers.NewDeviceController(d.Push)
	rtCtrl := controllers.NewRealtimeController(d.Hub)

	sob := r.Group("/sobriety")
	sob.Use(middlewares.AuthMiddleware())
	{
		sob.POST("/biometrics", bioCtrl.UpsertProfile)
		sob.GET("/biometrics", bioCtrl.GetProfile)
		sob.POST("/readings", bioCtrl.RecordReading)
		sob.GET("/readings", bioCtrl.ListReadings)

		sob.POST("/sessions", sessionCtrl.Start)
		sob.GET("/sessions", sessionCtrl.History)
		sob.GET("/sessions/current", sessionCtrl.Current)
		sob.POST("/sessions/:id/drinks", sessionCtrl.RecordDrink)
		sob.POST("/sessions/:id/end", sessionCtrl.End)
		sob.POST("/sessions/:id/recompute", sessionCtrl.Recompute)
		sob.GET("/sessions/:id/alerts", alertCtrl.ForSession)

		sob.GET("/order-safety", sessionCtrl.OrderSafety)

		sob.GET("/alerts", alertCtrl.Unacknowledged)
		sob.POST("/alerts/:id/acknowledge", alertCtrl.Acknowledge)
	}

	user := r.Group("/user")
	user.Use(middlewares.AuthMiddleware())
	{
		user.POST("/devices", deviceCtrl.Register)
		user.POST("/notifications/toggle", deviceCtrl.ToggleNotifications)
	}

	ws := r.Group("/ws")
	ws.Use(middlewares.AuthMiddleware())
	{
		ws.GET("/sobriety", rtCtrl.SobrietyWS)
	}

	return r
}
