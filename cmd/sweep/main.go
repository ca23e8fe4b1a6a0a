// The sweep removes expired guest sessions and their swipes. It is an
// external maintenance job (cron or similar), not part of the server runtime:
// the match core tolerates a session disappearing mid-use.
package main

import (
	"context"
	"log"
	"time"

	"github.com/mityasmirnov/AnyMatch/internal/config"
	"github.com/mityasmirnov/AnyMatch/internal/db"
	"github.com/mityasmirnov/AnyMatch/internal/repository"
)

func main() {
	cfg := config.New()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := repository.NewGuestRepository(database).DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		log.Fatalf("sweep failed: %v", err)
	}

	log.Printf("Sweep completed, %d expired sessions removed.", removed)
}
