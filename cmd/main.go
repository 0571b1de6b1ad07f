package main

import (
	"log"

	"github.com/antoniodjones/pours-consumer/config"
	"github.com/antoniodjones/pours-consumer/routes"
	"github.com/antoniodjones/pours-consumer/services"
)

func main() {
	config.InitDB()
	cfg := config.LoadMonitorConfig()

	hub := services.NewRealtimeHub()
	push, err := services.NewPushService(config.DB)
	if err != nil {
		log.Printf("push notifications disabled: %v", err)
		push = nil
	}
	alerts := services.NewAlertService(config.DB, cfg, hub, push)
	sessions := services.NewSessionService(config.DB, cfg, alerts, hub)
	biometrics := services.NewBiometricsService(config.DB)

	go sessions.RunIdleSweeper()

	r := routes.SetupRouter(routes.Deps{
		Sessions:   sessions,
		Biometrics: biometrics,
		Alerts:     alerts,
		Hub:        hub,
		Push:       push,
	})
	r.Run(":8080")
}
