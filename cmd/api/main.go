package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"HydroWatchAPI/internal/config"
	"HydroWatchAPI/internal/database"
	"HydroWatchAPI/internal/handler"
	"HydroWatchAPI/internal/logger"
	"HydroWatchAPI/internal/mqtt"
	"HydroWatchAPI/internal/repository"
	"HydroWatchAPI/internal/server"
	"HydroWatchAPI/internal/service"
	"HydroWatchAPI/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		LogFilePath: cfg.Logging.FilePath,
		UseColors:   cfg.Logging.UseColors,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer log.Close()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuration validation failed: %v", err)
	}

	cfg.Print()
	log.Info("Starting Hydro Watch API Server")

	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Info("Database connected successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal("Schema migration failed: %v", err)
	}

	sensorRepo := repository.NewSensorRepository(db.DB)
	alertRepo := repository.NewAlertRepository(db.DB)
	predictionRepo := repository.NewPredictionRepository(db.DB)

	mqttClient, err := mqtt.NewClient(mqtt.ClientConfig{
		MQTT:   &cfg.MQTT,
		Logger: log,
	})
	if err != nil {
		log.Fatal("Failed to create MQTT client: %v", err)
	}
	defer func() {
		if err := mqttClient.Disconnect(); err != nil {
			log.Error("Failed to disconnect MQTT: %v", err)
		}
	}()

	if err := mqttClient.Connect(); err != nil {
		log.Fatal("Failed to connect to MQTT broker: %v", err)
	}

	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	alertService := service.NewAlertService(alertRepo, hub, mqttClient, cfg.MQTT.AlertsTopic, log)
	ingestionService := service.NewIngestionService(sensorRepo, alertService, hub, log)
	predictionService := service.NewPredictionService(sensorRepo, predictionRepo, hub, log)
	analyticsService := service.NewAnalyticsService(sensorRepo, log)

	if err := mqttClient.Subscribe(cfg.MQTT.ReadingsTopic, handleReading(ingestionService, log)); err != nil {
		log.Fatal("Failed to subscribe to readings topic: %v", err)
	}

	log.Info("MQTT subscriptions active")

	sensorHandler := handler.NewSensorHandler(ingestionService, log)
	alertHandler := handler.NewAlertHandler(alertService, log)
	predictionHandler := handler.NewPredictionHandler(predictionService, log)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, log)
	healthHandler := handler.NewHealthHandler(db, mqttClient, log)

	srv := server.New(cfg, log)
	srv.RegisterHandlers(sensorHandler, alertHandler, predictionHandler, analyticsHandler, healthHandler, hub)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal("Server failed: %v", err)
		}
	}()

	log.Info("API server ready on http://%s:%d", cfg.Server.Host, cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Warn("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error: %v", err)
	}

	log.Info("Shutdown complete")
}

// handleReading feeds readings arriving over MQTT into the same ingestion
// pipeline the HTTP endpoint uses.
func handleReading(svc *service.IngestionService, log *logger.Logger) mqtt.MessageHandler {
	return func(topic string, payload []byte) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := svc.ProcessMessage(ctx, payload); err != nil {
			log.Error("Failed to process MQTT reading: %v", err)
			return err
		}
		return nil
	}
}
