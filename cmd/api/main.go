package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/motmatch/mot-marketplace/internal/config"
	dbpkg "github.com/motmatch/mot-marketplace/internal/db"
	"github.com/motmatch/mot-marketplace/internal/middleware"
	"github.com/motmatch/mot-marketplace/internal/routes"
)

func main() {

	cfg := config.Load()
	db := dbpkg.NewDB(cfg)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	jobManager := routes.RegisterRoutes(r, db, cfg)

	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("failed to start scheduled jobs: %v", err)
	}
	defer jobManager.StopAll()

	log.Printf("Server running on %s", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
