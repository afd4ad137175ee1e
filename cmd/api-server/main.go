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

	"bookden/internal/auth"
	"bookden/internal/covers"
	"bookden/internal/events"
	"bookden/internal/inventory"
	"bookden/internal/openlibrary"
	"bookden/internal/reconcile"
	"bookden/internal/search"
	"bookden/internal/sources"
	"bookden/pkg/database"
	"bookden/pkg/utils"
)

func main() {
	cfg, err := utils.Load()
	if err != nil {
		log.Fatalf("[main] config: %v", err)
	}

	dbCfg := database.Config{Path: cfg.DBPath}
	if err := database.EnsureDataDir(dbCfg); err != nil {
		log.Fatalf("[main] data dir: %v", err)
	}
	db := database.MustOpen(dbCfg)
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("[main] migrate: %v", err)
	}

	store := inventory.NewStore(db)
	coverCache := covers.New(cfg.CoverDir)
	hub := events.NewHub()

	timeout := cfg.AdapterHTTPTimeout()
	reconciler := reconcile.NewReconciler(
		reconcile.NewCache(cfg.CacheCapacity),
		sources.NewLibraryOfCongress(timeout),
		sources.NewInternetArchive(timeout),
		sources.NewGoogleBooks(timeout),
	)

	tokens := auth.TokenService{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Duration: cfg.JWTDuration(),
	}
	authRepo := auth.NewRepo(db)

	invHandler := inventory.NewHandler(store, hub, coverCache)
	searchHandler := search.NewHandler(openlibrary.NewClient(), store, reconciler, coverCache, hub)
	authHandler := auth.NewHandler(authRepo, tokens)
	coverHandler := covers.NewHandler(coverCache)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/debug/events", func(c *gin.Context) {
		c.JSON(http.StatusOK, hub.Stats())
	})

	r.GET("/ws", events.WSHandler(hub))

	api := r.Group("/api")
	coverHandler.RegisterRoutes(api)
	authHandler.RegisterRoutes(api)
	invHandler.RegisterRoutes(api)
	searchHandler.RegisterRoutes(api)

	protected := api.Group("", auth.AuthMiddleware(tokens))
	invHandler.RegisterProtectedRoutes(protected)
	searchHandler.RegisterProtectedRoutes(protected)

	eventSrv := events.NewServer(cfg.EventAddr, hub)
	go func() {
		log.Printf("[main] event feed listening on %s", cfg.EventAddr)
		if err := eventSrv.Run(); err != nil {
			log.Printf("[main] event feed: %v", err)
		}
	}()

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}
	go func() {
		log.Printf("[main] http listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] http: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Println("[main] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] http shutdown: %v", err)
	}
	if err := eventSrv.Close(); err != nil {
		log.Printf("[main] event feed close: %v", err)
	}
}
