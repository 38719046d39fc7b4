package risk

type Policy struct {
	// Utilization above WarnUtilization is reported, above
	// BreachUtilization the account is under-margined.
	WarnUtilization   float64 `json:"warn_utilization" yaml:"warn_utilization"`     // 0.80
	BreachUtilization float64 `json:"breach_utilization" yaml:"breach_utilization"` // 1.00
}

func DefaultPolicy() Policy {
	return Policy{
		WarnUtilization:   0.80,
		BreachUtilization: 1.00,
	}
}

type AccountSnapshot struct {
	Balance       float64
	UnrealizedPnL float64
	Equity        float64 // Balance + UnrealizedPnL
	Margin        float64
}

// NewAccountSnapshot fills in Equity.
func NewAccountSnapshot(balance, unrealized, margin float64) AccountSnapshot {
	return AccountSnapshot{
		Balance:       balance,
		UnrealizedPnL: unrealized,
		Equity:        balance + unrealized,
		Margin:        margin,
	}
}
