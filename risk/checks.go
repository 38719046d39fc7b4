package risk

import "fmt"

type Status int

const (
	Healthy Status = iota
	Warning
	Breach
)

func (s Status) String() string {
	switch s {
	case Warning:
		return "warning"
	case Breach:
		return "breach"
	default:
		return "healthy"
	}
}

type Violation struct {
	Code string
	Msg  string
}

type Decision struct {
	Status      Status
	Utilization float64
	Violations  []Violation
}

func (d *Decision) add(s Status, code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	if s > d.Status {
		d.Status = s
	}
}

// Breached reports whether the account must be liquidated.
func (d Decision) Breached() bool { return d.Status == Breach }

// Assess compares margin against equity.
func Assess(p Policy, acct AccountSnapshot) Decision {
	d := Decision{Status: Healthy, Utilization: Utilization(acct.Margin, acct.Equity)}

	if acct.Equity <= 0 {
		d.add(Breach, "NON_POSITIVE_EQUITY",
			fmt.Sprintf("equity %.2f is not positive", acct.Equity))
		return d
	}

	if acct.Equity < acct.Margin || d.Utilization > p.BreachUtilization {
		d.add(Breach, "MARGIN_BREACH",
			fmt.Sprintf("margin %.2f exceeds equity %.2f (%.2f%%)",
				acct.Margin, acct.Equity, 100*d.Utilization))
		return d
	}

	if d.Utilization > p.WarnUtilization {
		d.add(Warning, "MARGIN_WARNING",
			fmt.Sprintf("utilization %.2f%% exceeds warning level %.2f%%",
				100*d.Utilization, 100*p.WarnUtilization))
	}
	return d
}
