package main

import (
	"context"
	"flag"
	"log"
	"os"

	"pos-backend/internal/config"
	"pos-backend/internal/db"
	"pos-backend/internal/migrate"
)

func main() {
	var (
		down    int
		status  bool
		downAll bool
	)
	flag.IntVar(&down, "down", 0, "Roll back this many migrations instead of applying")
	flag.BoolVar(&downAll, "down-all", false, "Roll back every migration")
	flag.BoolVar(&status, "status", false, "Print the applied schema version and exit")
	flag.Parse()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	switch {
	case status:
		st, err := migrate.Current(ctx, pool)
		if err != nil {
			logger.Fatalf("read version: %v", err)
		}
		logger.Printf("schema version=%d dirty=%t", st.Version, st.Dirty)
	case downAll || down > 0:
		steps := down
		if downAll {
			steps = 0
		}
		if err := migrate.Down(ctx, pool, steps); err != nil {
			logger.Fatalf("roll back migrations: %v", err)
		}
		logger.Println("migrations rolled back")
	default:
		if err := migrate.Apply(ctx, pool); err != nil {
			logger.Fatalf("apply migrations: %v", err)
		}
		logger.Println("migrations applied")
	}
}
