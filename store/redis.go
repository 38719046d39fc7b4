package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rustyeddy/marginscan/internal/id"
	"github.com/rustyeddy/marginscan/market"
)

const (
	PositionsKey = "portfolio:positions"
	EquityKey    = "account:equity"
)

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps positions in a hash (field = position key, value =
// PositionRecord JSON) and the balance in a plain string key.
type RedisStore struct {
	rdb           *redis.Client
	initialEquity float64
}

func NewRedis(opts RedisOptions, initialEquity float64) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &RedisStore{rdb: rdb, initialEquity: initialEquity}
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Positions(ctx context.Context) ([]market.Position, error) {
	raw, err := s.rdb.HGetAll(ctx, PositionsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	out := make([]market.Position, 0, len(raw))
	for field, data := range raw {
		var rec market.PositionRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("decode position %q: %w", field, err)
		}
		if rec.ID == "" {
			rec.ID = field
		}
		p, err := rec.ToPosition()
		if err != nil {
			return nil, fmt.Errorf("decode position %q: %w", field, err)
		}
		out = append(out, p)
	}
	sortByKey(out)
	return out, nil
}

func (s *RedisStore) AddPosition(ctx context.Context, p market.Position) (market.Position, error) {
	if err := p.Validate(); err != nil {
		return market.Position{}, fmt.Errorf("add position: %w", err)
	}
	if p.ID == "" {
		p.ID = id.New()
	}
	data, err := json.Marshal(market.RecordOf(p))
	if err != nil {
		return market.Position{}, fmt.Errorf("encode position: %w", err)
	}
	if err := s.rdb.HSet(ctx, PositionsKey, p.Key(), data).Err(); err != nil {
		return market.Position{}, fmt.Errorf("add position: %w", err)
	}
	return p, nil
}

func (s *RedisStore) RemovePosition(ctx context.Context, key string) error {
	n, err := s.rdb.HDel(ctx, PositionsKey, key).Result()
	if err != nil {
		return fmt.Errorf("remove position %q: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("remove position %q: %w", key, ErrPositionNotFound)
	}
	return nil
}

func (s *RedisStore) Equity(ctx context.Context) (float64, error) {
	v, err := s.rdb.Get(ctx, EquityKey).Result()
	if errors.Is(err, redis.Nil) {
		return s.initialEquity, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read equity: %w", err)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse equity %q: %w", v, err)
	}
	return f, nil
}

func (s *RedisStore) SetEquity(ctx context.Context, amount float64) error {
	v := strconv.FormatFloat(amount, 'f', -1, 64)
	if err := s.rdb.Set(ctx, EquityKey, v, 0).Err(); err != nil {
		return fmt.Errorf("set equity: %w", err)
	}
	return nil
}

// Reset deletes only this store's keys; the rest of the database is left
// alone.
func (s *RedisStore) Reset(ctx context.Context) error {
	if err := s.rdb.Del(ctx, PositionsKey, EquityKey).Err(); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
