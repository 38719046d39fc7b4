package market

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Portfolio is the on-disk form used by one-shot calculations. YAML and
// JSON files are both accepted. Equity is optional.
type Portfolio struct {
	Positions []PositionRecord `json:"positions" yaml:"positions"`
	Ticks     []Tick           `json:"ticks" yaml:"ticks"`
	Equity    float64          `json:"equity,omitempty" yaml:"equity,omitempty"`
}

func LoadPortfolio(path string) (Portfolio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Portfolio{}, fmt.Errorf("read portfolio: %w", err)
	}
	return ParsePortfolio(data)
}

// ParsePortfolio decodes a YAML (or JSON) document.
func ParsePortfolio(data []byte) (Portfolio, error) {
	var pf Portfolio
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return Portfolio{}, fmt.Errorf("parse portfolio: %w", err)
	}
	return pf, nil
}

// Decode converts the records and ticks, reporting every bad entry.
func (pf Portfolio) Decode() ([]Position, Snapshot, error) {
	var errs []error
	positions := make([]Position, 0, len(pf.Positions))
	for i, r := range pf.Positions {
		p, err := r.ToPosition()
		if err != nil {
			errs = append(errs, fmt.Errorf("positions[%d]: %w", i, err))
			continue
		}
		positions = append(positions, p)
	}
	for i, t := range pf.Ticks {
		if err := t.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("ticks[%d]: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return nil, Snapshot{}, errors.Join(errs...)
	}
	return positions, NewSnapshot(pf.Ticks...), nil
}
