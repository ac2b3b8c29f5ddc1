package ledger

const (
	bestsellerMultiplier    = 1.5
	premiumMemberMultiplier = 0.8
)

// FeeBracket bills every overdue day up to and including UpToDay at RatePerDay.
// UpToDay 0 means the bracket is unbounded.
type FeeBracket struct {
	UpToDay    int
	RatePerDay float64
}

// FeeSchedule is an ordered list of brackets. Days past the last bounded bracket are billed at its rate.
type FeeSchedule []FeeBracket

// FlatFeeSchedule bills every overdue day at 0.50. It is the default.
var FlatFeeSchedule = FeeSchedule{
	{UpToDay: 0, RatePerDay: 0.50},
}

// TieredFeeSchedule bills days 1-7 at 0.50, days 8-14 at 1.00 and every later day at 1.50.
var TieredFeeSchedule = FeeSchedule{
	{UpToDay: 7, RatePerDay: 0.50},
	{UpToDay: 14, RatePerDay: 1.00},
	{UpToDay: 0, RatePerDay: 1.50},
}

// BaseFee sums the per-day rates of all overdue days, each billed at the rate of its bracket.
func (s FeeSchedule) BaseFee(overdueDays int) float64 {
	fee := 0.0
	billed := 0

	for _, bracket := range s {
		if billed >= overdueDays {
			return fee
		}

		upper := overdueDays
		if bracket.UpToDay > 0 && bracket.UpToDay < overdueDays {
			upper = bracket.UpToDay
		}

		if upper > billed {
			fee += float64(upper-billed) * bracket.RatePerDay
			billed = upper
		}
	}

	if billed < overdueDays && len(s) > 0 {
		fee += float64(overdueDays-billed) * s[len(s)-1].RatePerDay
	}

	return fee
}

// lateFee applies the bestseller surcharge and then the premium member discount to the base fee.
func lateFee(schedule FeeSchedule, overdueDays int, isBestseller, isPremiumMember bool) (float64, error) {
	if overdueDays < 0 {
		return 0, &InvalidArgumentError{Message: msgNegativeOverdueDays}
	}

	fee := schedule.BaseFee(overdueDays)

	if isBestseller {
		fee *= bestsellerMultiplier
	}

	if isPremiumMember {
		fee *= premiumMemberMultiplier
	}

	return fee, nil
}
