// nexus-search-service
//
// Ranked job search for the nexus jobs platform. Combines full-text
// relevance with trigram fuzzy matching over job titles, locations and
// categories, with Redis-cached result pages (300s TTL) and an
// optional cron-driven cache warmer for hot queries.
//
// User accounts, job CRUD and applications live in other services;
// this one only reads the jobs table and serves GET /jobs/search.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nexus/search-service/internal/cache"
	"nexus/search-service/internal/config"
	"nexus/search-service/internal/db"
	"nexus/search-service/internal/httpapi"
	"nexus/search-service/internal/search"
	"nexus/search-service/internal/store"
	"nexus/search-service/internal/warmer"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[search-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[search-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[search-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[search-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[search-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[search-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[search-service] Redis connected ✓")

	// ── Engine + warmer ──────────────────────────────────────────────────────
	engine := search.NewEngine(store.NewPostgres(pool), cache.NewRedis(rdb))

	var wrm *warmer.Warmer
	if cfg.WarmIntervalMinutes > 0 {
		wrm = warmer.New(engine, cfg.WarmIntervalMinutes)
		if err := wrm.Start(ctx); err != nil {
			log.Fatalf("[search-service] Warmer: %v", err)
		}
		defer wrm.Stop()
	} else {
		log.Println("[search-service] Cache warmer disabled (WARM_INTERVAL_MINUTES=0)")
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	h := httpapi.NewHandler(engine, wrm)
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[search-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[search-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[search-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[search-service] Shutdown error: %v", err)
	}
	log.Println("[search-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "search-service",
		"version": version,
	})
}
