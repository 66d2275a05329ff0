// Package database opens the PostgreSQL connection pool backing the todo
// table.
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cirocosta/todo-api/internal/config"
)

// PoolConfig turns DB settings into a pgxpool configuration without
// connecting.
func PoolConfig(cfg config.DBConfig) (*pgxpool.Config, error) {
	connString, err := cfg.ConnString()
	if err != nil {
		return nil, err
	}

	pcfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}

	pcfg.MaxConns = cfg.MaxConns
	pcfg.MinConns = cfg.MinConns
	pcfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	pcfg.MaxConnLifetime = cfg.MaxConnLifetime

	return pcfg, nil
}

// Connect opens a pool and pings it within cfg.ConnectTimeout. The caller
// owns the pool and must Close it.
func Connect(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	pcfg, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}
