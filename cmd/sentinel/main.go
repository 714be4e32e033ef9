package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"sentinel-alarm/internal/api"
	"sentinel-alarm/internal/config"
	"sentinel-alarm/internal/repository"
	"sentinel-alarm/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	alarmRepo := repository.NewAlarmRepository(db)
	lockRepo := repository.NewLockRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)

	alarmSvc := service.NewAlarmService(alarmRepo)
	lockSvc := service.NewLockService(lockRepo, attemptRepo)
	insightsSvc := service.NewInsightsService(lockRepo)

	router := gin.Default()
	api.SetupRoutes(router, api.NewHandler(alarmSvc, lockSvc, insightsSvc))

	scheduler := service.NewSchedulerService(time.Local)
	if cfg.SweepInterval > 0 {
		if _, err := scheduler.ScheduleInterval(cfg.SweepInterval, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if n, err := lockSvc.SweepExpired(jobCtx); err != nil {
				log.Printf("sweep: %v", err)
			} else if n > 0 {
				log.Printf("sweep: expired %d lock(s)", n)
			}
		}); err != nil {
			log.Fatalf("schedule sweep: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: router}
	go func() {
		log.Printf("Sentinel alarm server listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server stopped with error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("Shutdown complete.")
}
