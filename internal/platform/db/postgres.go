package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	postgresPingTimeout     = 5 * time.Second
	postgresMaxOpenConns    = 20
	postgresMaxIdleConns    = 5
	postgresConnMaxLifetime = 30 * time.Minute
)

// PostgresPool is the pooled gorm handle behind the JSONB vote_documents table.
type PostgresPool struct {
	Gorm *gorm.DB
}

// ConnectPostgres opens a pool against dsn and pings it before returning.
// SQL logging is limited to warnings; the repository logs its own failures.
func ConnectPostgres(ctx context.Context, dsn string) (*PostgresPool, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open vote document pool: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("vote document pool handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(postgresMaxOpenConns)
	sqlDB.SetMaxIdleConns(postgresMaxIdleConns)
	sqlDB.SetConnMaxLifetime(postgresConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, postgresPingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("reach vote document pool: %w", err)
	}
	return &PostgresPool{Gorm: gdb}, nil
}

func (p *PostgresPool) Close() error {
	if p == nil || p.Gorm == nil {
		return nil
	}
	sqlDB, err := p.Gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
