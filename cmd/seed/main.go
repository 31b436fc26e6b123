package main

import (
	"context"
	"log"
	"os"

	"pos-backend/internal/config"
	"pos-backend/internal/db"
	"pos-backend/internal/repository/customer"
	"pos-backend/internal/repository/product"
	"pos-backend/internal/seed"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := seed.Apply(ctx, product.NewPostgres(pool, logger), customer.NewPostgres(pool, logger)); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Println("seed applied")
}
