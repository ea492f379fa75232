package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"tarefas/internal/cache"
	"tarefas/internal/config"
	"tarefas/internal/service"
	"tarefas/internal/transport/rest"
	"tarefas/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()
	log.Printf("Upstream: %s (origin %s)", cfg.BaseURL, cfg.ClientOrigin)
	log.Printf("Batch workers: %d, pacing default %d-%d min", cfg.WorkerCap, cfg.TimeMinDefault, cfg.TimeMaxDefault)

	// Upstream client and services
	client := service.NewEduspClient(cfg)
	answerSvc := service.NewAnswerService()
	taskSvc := service.NewTaskService(client)
	submitSvc := service.NewSubmitService(client, answerSvc, cfg.WorkerCap)

	// Optional redis-backed target cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Fatal("Failed to ping Redis:", err)
		}
		log.Println("Connected to Redis, target cache enabled")
		taskSvc.SetTargetCache(cache.NewTargetCache(rdb, cfg.TargetTTL))
	} else {
		log.Println("REDIS_ADDR not set, target cache disabled")
	}

	// Batch progress feed
	wsHub := ws.NewHub()
	submitSvc.SetBroadcaster(wsHub)

	router := rest.NewRouter(&rest.Container{
		Config:        cfg,
		Upstream:      client,
		TaskService:   taskSvc,
		SubmitService: submitSvc,
		WSHub:         wsHub,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		log.Println("Endpoints:")
		log.Println("  POST /auth")
		log.Println("  POST /tasks | /tasks/pending | /tasks/expired")
		log.Println("  POST /task/process")
		log.Println("  POST /complete")
		log.Println("  GET  /ws/progress")
		log.Println("  GET  /health")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// In-flight batches can legitimately sleep for minutes; give them a
	// generous drain window before forcing the exit.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
