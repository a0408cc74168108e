// Command engine runs the kieswet-engine HTTP service: the thin shell
// wrapping the pure apportionment/nomination/data-entry core in a
// gin-gonic API, a pgx/v5-backed Postgres store, and a WebSocket hub for
// live election-night dashboards.
package main

import (
	"context"
	"log"

	"github.com/rawblock/kieswet-engine/internal/api"
	"github.com/rawblock/kieswet-engine/internal/config"
	"github.com/rawblock/kieswet-engine/internal/store"
	"github.com/rawblock/kieswet-engine/internal/ws"
)

func main() {
	log.Println("Starting kieswet-engine (municipal council seat apportionment service)...")

	cfg := config.Load()

	ctx := context.Background()
	dbStore, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbStore.Close()

	if err := dbStore.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	hub := ws.NewHub()
	go hub.Run()

	r := api.SetupRouter(dbStore, hub)

	log.Printf("Engine running on :%s\n", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
