package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"taskboard/internal/config"
	"taskboard/internal/notify"
	"taskboard/internal/repository"
	"taskboard/internal/service"
	"taskboard/internal/web"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	authSvc := service.NewAuthService(userRepo, sessionRepo, cfg.JWTSecret,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.SessionTTL)
	taskSvc := service.NewTaskService(taskRepo)

	server, err := web.New(cfg.Addr, authSvc, taskSvc, userRepo)
	if err != nil {
		log.Fatalf("server: %v", err)
	}

	operations := map[string]gfshutdown.Operation{
		"http": func(ctx context.Context) error {
			return server.Shutdown()
		},
		"db": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}

	scheduler := service.NewSchedulerService(time.Local)
	if cfg.TelegramToken != "" {
		notifier, err := notify.NewTelegram(cfg.TelegramToken)
		if err != nil {
			log.Fatalf("telegram: %v", err)
		}
		reminderSvc := service.NewReminderService(taskSvc, userRepo, notifier)

		if _, err := scheduler.ScheduleDaily(cfg.DigestAt, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := reminderSvc.SendDailyDigests(jobCtx, time.Now()); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("digest: %v", err)
			}
		}); err != nil {
			log.Fatalf("schedule digests: %v", err)
		}
		scheduler.Start()
		operations["scheduler"] = func(ctx context.Context) error {
			scheduler.Stop()
			return nil
		}
		log.Printf("[info] daily digests scheduled at %s", cfg.DigestAt)
	} else {
		log.Println("[info] TELEGRAM_TOKEN not set, daily digests disabled")
	}

	go func() {
		// Listen returns nil once Shutdown has drained the server.
		if err := server.Listen(); err != nil {
			log.Fatalf("http server: %v", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(context.Background(), shutdownTimeout, operations)
	exitCode := <-wait
	log.Println("Shutdown complete.")
	os.Exit(exitCode)
}
