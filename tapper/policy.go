package tapper

import (
	"time"

	"boinkfarm/constant"
	"boinkfarm/request"
)

var spinAmounts = []int{150, 50, 25, 10, 5, 1}

// NextSpinAmount is the largest spin bet that fits in the remaining energy.
func NextSpinAmount(remaining int) int {
	for _, amount := range spinAmounts {
		if amount <= remaining {
			return amount
		}
	}
	return 1
}

// SpinPlan lists the bets a full drain of energy places, in order.
func SpinPlan(energy int) []int {
	var plan []int
	for remaining := energy; remaining > 0; {
		amount := NextSpinAmount(remaining)
		plan = append(plan, amount)
		remaining -= amount
	}
	return plan
}

func BoosterDue(lastClaim *time.Time, now time.Time) bool {
	return lastClaim == nil || now.After(lastClaim.Add(constant.BoosterCooldown))
}

type cooldown struct {
	period time.Duration
	// provider is set for ad-gated actions and names the ad network
	// reported in the ad-watched call.
	provider string
}

var cooldowns = map[string]cooldown{
	"SeveralHourlsReward":          {period: 6 * time.Hour},
	"SeveralHourlsRewardedAdTask":  {period: 6 * time.Minute, provider: "adsgram"},
	"SeveralHourlsRewardedAdTask2": {period: 6 * time.Minute, provider: "onclicka"},
}

// Eligible reports whether nameID may be claimed at now. When a cooldown is
// still running it also returns the time it ends. Actions without a cooldown
// class are one-shot: any claim record makes them ineligible for good.
func Eligible(nameID string, record *request.RewardedActionRecord, now time.Time) (bool, time.Time) {
	if record == nil {
		return true, time.Time{}
	}

	cd, ok := cooldowns[nameID]
	if !ok {
		return false, time.Time{}
	}

	last := now
	if claimed := record.ClaimedAt(); claimed != nil {
		last = *claimed
	}

	next := last.Add(cd.period)
	if now.After(next) {
		return true, time.Time{}
	}
	return false, next
}

// AdProvider returns the ad network for ad-gated actions.
func AdProvider(nameID string) (string, bool) {
	cd, ok := cooldowns[nameID]
	if !ok || cd.provider == "" {
		return "", false
	}
	return cd.provider, true
}
