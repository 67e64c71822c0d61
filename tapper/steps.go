package tapper

import (
	"context"

	"boinkfarm/client"
	"boinkfarm/constant"
	"boinkfarm/format"
	"boinkfarm/request"

	"go.uber.org/zap"
)

func (t *Tapper) claimBooster(ctx context.Context, info *request.UserInfo) Outcome {
	last := info.LastBoosterClaim()
	if !BoosterDue(last, t.clock.Now()) {
		t.logger.Debug("Booster not ready", zap.Time("next", last.Add(constant.BoosterCooldown)))
		return Skipped
	}

	booster := request.NewBoosterRequest(info.Energy(), constant.BoosterEnergyThreshold, constant.BoosterMultiplier)
	err := t.api.AddBooster(ctx, booster)
	if err != nil {
		t.logger.Warn("Failed to claim boost", zap.Int("option", booster.OptionNumber), zap.Error(err))
	} else {
		t.logger.Info("Claimed boost successfully", zap.Int("option", booster.OptionNumber))
	}
	t.pause(ctx, constant.StepPause)
	return outcomeOf(err)
}

// drainSlotMachine spends all slot energy. Energy is read fresh because the
// booster claim may have changed it.
func (t *Tapper) drainSlotMachine(ctx context.Context, _ *request.UserInfo) Outcome {
	info, err := t.api.UserInfo(ctx)
	if err != nil {
		t.logger.Warn("Failed to fetch spin energy", zap.Error(err))
		return outcomeOf(err)
	}

	spins := info.Energy()
	t.logger.Info("Spins", zap.Int("energy", spins))
	if spins <= 0 {
		return Skipped
	}

	outcome := t.spinSlotMachine(ctx, spins)
	t.pause(ctx, constant.StepPause)
	return outcome
}

// spinSlotMachine bets the largest fitting amount until energy runs out.
// Remaining energy is tracked locally; the first refused spin ends the
// drain without asking the server what is left.
func (t *Tapper) spinSlotMachine(ctx context.Context, energy int) Outcome {
	remaining := energy
	for remaining > 0 {
		amount := NextSpinAmount(remaining)
		res, err := t.api.SpinSlotMachine(ctx, amount)
		if err != nil {
			t.logger.Warn("Slot machine spin failed",
				zap.Int("amount", amount),
				zap.Int("remaining", remaining),
				zap.Error(err))
			t.pause(ctx, constant.SpinFailurePause)
			return outcomeOf(err)
		}

		remaining -= amount
		t.logger.Info("Spin prize",
			zap.Int("amount", amount),
			zap.String("prize", res.Prize.PrizeTypeName),
			zap.Any("value", res.Prize.PrizeValue),
			zap.Int("remaining", remaining))
	}
	return Done
}

// spinWheelOnce spins the wheel of fortune on the first cycle only, whatever
// the result.
func (t *Tapper) spinWheelOnce(ctx context.Context, _ *request.UserInfo) Outcome {
	if t.wheelSpun {
		return Skipped
	}
	t.wheelSpun = true

	res, err := t.api.SpinWheelOfFortune(ctx)
	if err != nil {
		t.logger.Warn("Wheel of fortune failed", zap.Error(err))
		return outcomeOf(err)
	}
	t.logger.Info("Wheel of fortune",
		zap.String("prize", res.Prize.PrizeName),
		zap.Any("value", res.Prize.PrizeValue))
	return Done
}

// upgrade keeps upgrading until the server says no. Running out of coins is
// the normal way out, so a refusal is not a failure.
func (t *Tapper) upgrade(ctx context.Context, _ *request.UserInfo) Outcome {
	for {
		res, err := t.api.UpgradeBoinker(ctx)
		t.pause(ctx, constant.UpgradePause)

		if err != nil {
			outcome := outcomeOf(err)
			if code := client.StatusCode(err); code != 0 && outcome != Unauthorized {
				t.logger.Info("Upgrade boinker: not enough coins", zap.Int("status", code))
				return Done
			}
			t.logger.Warn("Upgrade boinker failed", zap.Error(err))
			return outcome
		}

		t.logger.Info("Upgrade boinker",
			zap.String("coins", format.Int(*res.NewSoftCurrencyAmount)),
			zap.Int("spins", *res.NewSlotMachineEnergy),
			zap.Int("rank", *res.Rank))
	}
}
