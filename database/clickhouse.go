package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/sirupsen/logrus"

	"portfolio/api/config"
)

type ClickHouseClient struct {
	Conn   clickhouse.Conn
	logger logrus.FieldLogger
}

// NewClickHouseDB connects to ClickHouse over the native TCP protocol.
func NewClickHouseDB(ctx context.Context, cfg config.ClickHouseConfig, logger logrus.FieldLogger) (*ClickHouseClient, error) {
	options := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.NativePort)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		ClientInfo: clickhouse.ClientInfo{
			Products: []struct {
				Name    string
				Version string
			}{{Name: "portfolio-api", Version: "1.0.0"}},
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		DialTimeout: 5 * time.Second,
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse via Native TCP: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.Ping(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	logger.WithField("addr", options.Addr[0]).Info("Connected to ClickHouse")
	return &ClickHouseClient{Conn: conn, logger: logger}, nil
}

func (c *ClickHouseClient) Close() {
	if c.Conn == nil {
		return
	}
	if err := c.Conn.Close(); err != nil {
		c.logger.WithError(err).Error("Error closing ClickHouse connection")
		return
	}
	c.logger.Info("ClickHouse connection closed")
}
