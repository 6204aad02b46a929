package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/marcosgperez/social-media/service/gateway"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewGateway picks the persistence backend once, at process start: a
// configured DATABASE_URL selects the direct-SQL path, otherwise queries go
// through the ORM client via DB_URL. The choice is never re-checked per
// request.
func NewGateway(ctx context.Context) (gateway.Gateway, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if connString := os.Getenv("DATABASE_URL"); connString != "" {
		pool, err := NewPGXPool(ctx, connString)
		if err != nil {
			return nil, err
		}
		log.Println("Using direct SQL backend")
		return gateway.NewDirectSQLClient(pool), nil
	}

	db, err := NewGormStorage(os.Getenv("DB_URL"))
	if err != nil {
		return nil, err
	}
	log.Println("Using managed ORM backend")
	return gateway.NewManagedClient(db), nil
}

func NewGormStorage(connString string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(connString), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)

	return db, nil
}

func NewPGXPool(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = 20
	cfg.MaxConnIdleTime = 30 * time.Second
	cfg.ConnConfig.ConnectTimeout = 2 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	return pool, nil
}
