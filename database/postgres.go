package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type DBClient struct {
	DB     *sql.DB
	logger logrus.FieldLogger
}

// NewPostgresDB opens and pings a Postgres pool for dsn.
func NewPostgresDB(ctx context.Context, dsn string, logger logrus.FieldLogger) (*DBClient, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database (ping failed): %w", err)
	}

	logger.Info("Connected to PostgreSQL")
	return &DBClient{DB: db, logger: logger}, nil
}

func (c *DBClient) Close() {
	if c.DB == nil {
		return
	}
	if err := c.DB.Close(); err != nil {
		c.logger.WithError(err).Error("Error closing PostgreSQL connection")
		return
	}
	c.logger.Info("PostgreSQL connection closed")
}
