package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
)

func main() {
	log.SetPrefix("lg/dialedin-diet-api: ")
	log.SetFlags(log.LstdFlags)

	cfg := loadConfig()
	if cfg.DBURL == "" {
		log.Fatal("DB_URL is not set")
	}
	gin.SetMode(cfg.GinMode)

	pool, err := newDBPool(context.Background(), cfg.DBURL)
	if err != nil {
		log.Fatalf("Unable to open database: %v", err)
	}
	defer pool.Close()
	log.Println("DB pool ready")

	h := &Handler{db: pool}
	router := gin.Default()
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)

	log.Printf("Listening on %s", cfg.Addr)
	if err := router.Run(cfg.Addr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
