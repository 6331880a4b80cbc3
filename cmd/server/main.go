package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"promo_notify/internal/database"
	"promo_notify/internal/global"
	"promo_notify/internal/logger"
)

// initLogger khởi tạo và cấu hình logger cho toàn bộ ứng dụng
func initLogger() {
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	logger.GetAppLogger().Info("Logger system initialized successfully")
}

// Hàm main
func main() {
	// Khởi tạo logger
	initLogger()

	// Khởi tạo các biến toàn cục (validator, config, database)
	InitGlobal()

	log := logger.GetAppLogger()

	// Wiring services
	services, err := InitServices()
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Reminder worker chạy nền theo cron
	if global.Config.ReminderEnabled {
		if err := services.ReminderWorker.Start(); err != nil {
			log.WithError(err).Error("Failed to start reminder worker, continuing without it")
		}
	} else {
		log.Info("⏰ [REMINDER] Worker disabled by configuration")
	}

	// Khởi tạo Fiber app
	app := InitFiberApp(services)

	// Graceful shutdown: dừng worker, shutdown server, đóng database
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Info("Shutting down server...")
		if global.Config.ReminderEnabled {
			services.ReminderWorker.Stop()
		}
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.WithError(err).Error("Error during server shutdown")
		}
	}()

	log.WithField("address", global.Config.Address).Info("Starting Fiber server...")
	if err := app.Listen(global.Config.Address); err != nil {
		log.Fatalf("Error in Fiber Listen: %v", err)
	}

	// Listen trả về sau khi Shutdown hoàn tất
	if global.MongoClient != nil {
		database.CloseInstance(global.MongoClient)
	}
	log.Info("Server stopped")
}
