package sim

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rustyeddy/marginscan/market"
)

// Replay serves scripted snapshots read from CSV:
//
//	time,ticker,price,volatility
//
// Consecutive rows with the same time form one snapshot. The header row is
// optional. After the last snapshot Replay keeps returning it.
type Replay struct {
	mu    sync.Mutex
	steps []market.Snapshot
	next  int
}

func LoadReplay(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := ReadReplay(f)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", path, err)
	}
	return r, nil
}

func ReadReplay(rd io.Reader) (*Replay, error) {
	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1

	var (
		steps   []market.Snapshot
		pending []market.Tick
		line    int
	)
	flush := func() {
		if len(pending) > 0 {
			steps = append(steps, market.NewSnapshot(pending...))
			pending = nil
		}
	}

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(row) == 0 {
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "time") {
			continue
		}

		t, err := parseReplayRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(pending) > 0 && !pending[0].Time.Equal(t.Time) {
			flush()
		}
		pending = append(pending, t)
	}
	flush()

	if len(steps) == 0 {
		return nil, errors.New("no ticks")
	}
	return &Replay{steps: steps}, nil
}

func parseReplayRow(row []string) (market.Tick, error) {
	if len(row) < 4 {
		return market.Tick{}, fmt.Errorf("bad row (need time,ticker,price,volatility): %v", row)
	}

	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(row[0]))
	if err != nil {
		return market.Tick{}, fmt.Errorf("bad time %q: %w", row[0], err)
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
	if err != nil {
		return market.Tick{}, fmt.Errorf("bad price %q: %w", row[2], err)
	}
	vol, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
	if err != nil {
		return market.Tick{}, fmt.Errorf("bad volatility %q: %w", row[3], err)
	}

	t := market.Tick{
		Ticker:     strings.TrimSpace(row[1]),
		Price:      price,
		Volatility: vol,
		Time:       ts,
	}
	if err := t.Validate(); err != nil {
		return market.Tick{}, err
	}
	return t, nil
}

// Len is the number of scripted snapshots.
func (r *Replay) Len() int { return len(r.steps) }

func (r *Replay) Snapshot(ctx context.Context) (market.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return market.Snapshot{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.steps[r.next]
	if r.next < len(r.steps)-1 {
		r.next++
	}
	return s, nil
}
