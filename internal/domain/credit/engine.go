package credit

import "time"

const (
	ReasonDebtExceedsLimit = "Current debt exceeds approved limit"
	ReasonScoreTooLow      = "Credit score too low"
	ReasonEMIUnaffordable  = "EMI exceeds 50% of salary"
	ReasonAmountTooSmall   = "Loan amount too small"

	freshCustomerScore  = 20
	onTimeRatioRequired = 0.8
	maxIncomeShareOfEMI = 0.5
)

// Profile is the part of a customer the engine needs.
type Profile struct {
	CurrentDebt   float64
	ApprovedLimit float64
	MonthlySalary float64
}

type LoanRecord struct {
	EMIsPaidOnTime int
	StartDate      time.Time
}

type Request struct {
	Amount       float64
	Tenure       int
	InterestRate float64
}

// Decision is the outcome of one evaluation. A rejection is a Decision with
// Approved false and a Reason, never an error.
type Decision struct {
	Approved           bool
	Score              int
	CorrectedRate      float64
	MonthlyInstallment float64
	Reason             string
}

type Engine struct {
	now func() time.Time
}

func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

func (e *Engine) Evaluate(profile Profile, history []LoanRecord, req Request) Decision {
	if profile.CurrentDebt > profile.ApprovedLimit {
		return Decision{Score: 0, Reason: ReasonDebtExceedsLimit}
	}

	score := Score(profile, history, e.now().Year())

	approved, rate := ApplyScoreTier(score, req.InterestRate)
	if !approved {
		return Decision{Score: score, Reason: ReasonScoreTooLow}
	}

	emi := CalculateEMI(req.Amount, rate, req.Tenure)
	// A booked loan must carry a positive installment once rounded to cents.
	if emi <= 0 {
		return Decision{Score: score, Reason: ReasonAmountTooSmall}
	}
	if emi > maxIncomeShareOfEMI*profile.MonthlySalary {
		return Decision{Score: score, Reason: ReasonEMIUnaffordable}
	}

	return Decision{
		Approved:           true,
		Score:              score,
		CorrectedRate:      rate,
		MonthlyInstallment: emi,
	}
}

// Score computes the internal credit score. currentYear drives the
// recent-activity bonus.
func Score(profile Profile, history []LoanRecord, currentYear int) int {
	if len(history) == 0 {
		return freshCustomerScore
	}

	score := 0
	paidOnTime := 0
	recent := false
	for _, l := range history {
		paidOnTime += l.EMIsPaidOnTime
		if l.StartDate.Year() == currentYear {
			recent = true
		}
	}

	if float64(paidOnTime)/float64(len(history)) >= onTimeRatioRequired {
		score += 20
	}
	if recent {
		score += 10
	}
	if len(history) < 3 {
		score += 10
	}
	// Always true once the hard debt check has passed; kept as an additive bonus.
	if profile.CurrentDebt <= profile.ApprovedLimit {
		score += 10
	}

	return score
}

// ApplyScoreTier maps a score to approval and the minimum rate for its tier.
func ApplyScoreTier(score int, requestedRate float64) (bool, float64) {
	switch {
	case score > 50:
		return true, requestedRate
	case score > 30:
		return true, max(requestedRate, 12)
	case score > 10:
		return true, max(requestedRate, 16)
	default:
		return false, 0
	}
}
