package cmd

import (
	"context"
	"fmt"

	"github.com/rustyeddy/marginscan/config"
	"github.com/rustyeddy/marginscan/journal"
	"github.com/rustyeddy/marginscan/store"
)

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Type {
	case "redis":
		rs := store.NewRedis(store.RedisOptions{
			Addr:     cfg.Store.Redis.Addr(),
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		}, cfg.Risk.InitialEquity)
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Store.Redis.Addr(), err)
		}
		return rs, nil
	default:
		return store.NewMemory(cfg.Risk.InitialEquity), nil
	}
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "csv":
		return journal.NewCSV(cfg.Journal.CyclesFile, cfg.Journal.LiquidationsFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	default:
		return journal.Nop{}, nil
	}
}
