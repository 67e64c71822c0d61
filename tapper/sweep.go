package tapper

import (
	"context"
	"time"

	"boinkfarm/client"
	"boinkfarm/constant"
	"boinkfarm/request"

	"go.uber.org/zap"
)

// sweep claims every rewarded action that is not skipped and whose cooldown
// has run out. A failing action never stops the sweep; only a rejected
// token does.
func (t *Tapper) sweep(ctx context.Context, _ *request.UserInfo) Outcome {
	info, err := t.api.UserInfo(ctx)
	if err != nil {
		t.logger.Warn("Failed to fetch user info for tasks", zap.Error(err))
		return outcomeOf(err)
	}

	actions, err := t.api.RewardedActions(ctx)
	if err != nil {
		t.logger.Warn("Failed to fetch rewarded actions", zap.Error(err))
		return outcomeOf(err)
	}

	for _, action := range actions {
		if ctx.Err() != nil {
			return Failed
		}

		nameID := action.NameID
		if _, skip := t.skipped[nameID]; skip {
			t.logger.Debug("Skipping task", zap.String("task", nameID))
			continue
		}

		now := t.clock.Now()
		ok, next := Eligible(nameID, info.RewardRecord(nameID), now)
		if !ok {
			if !next.IsZero() {
				t.logger.Info("Task on cooldown",
					zap.String("task", nameID),
					zap.Duration("wait", next.Sub(now).Round(time.Second)))
			}
			continue
		}

		var outcome Outcome
		if provider, ad := AdProvider(nameID); ad {
			outcome = t.performAdTask(ctx, nameID, provider)
		} else {
			outcome = t.performTask(ctx, nameID)
		}
		if outcome == Unauthorized {
			return Unauthorized
		}

		t.pause(ctx, constant.ActionThrottle)
	}

	t.pause(ctx, constant.StepPause)
	return Done
}

func (t *Tapper) performTask(ctx context.Context, nameID string) Outcome {
	if err := t.api.ClickRewardedAction(ctx, nameID); err != nil {
		t.logger.Error("Error performing task", zap.String("task", nameID), zap.Error(err))
		return outcomeOf(err)
	}
	t.logger.Info("Performed task, status pending", zap.String("task", nameID))

	t.pause(ctx, constant.ClickToClaimDelay)
	return t.claimTask(ctx, nameID)
}

func (t *Tapper) performAdTask(ctx context.Context, nameID, provider string) Outcome {
	if err := t.api.ClickRewardedAction(ctx, nameID); err != nil {
		t.logger.Error("Error clicking ad task", zap.String("task", nameID), zap.Error(err))
		return outcomeOf(err)
	}
	t.logger.Info("Ad task clicked", zap.String("task", nameID))

	t.pause(ctx, constant.AdClickDelay)
	if err := t.api.AdWatched(ctx, provider); err != nil {
		t.logger.Error("Error confirming ad watched",
			zap.String("task", nameID),
			zap.String("provider", provider),
			zap.Error(err))
		return outcomeOf(err)
	}
	t.logger.Info("Ad watched confirmed", zap.String("task", nameID), zap.String("provider", provider))

	t.pause(ctx, constant.AdWatchedDelay)
	return t.claimTask(ctx, nameID)
}

func (t *Tapper) claimTask(ctx context.Context, nameID string) Outcome {
	res, err := t.api.ClaimRewardedAction(ctx, nameID)
	if err != nil {
		t.logger.Warn("Failed to claim reward",
			zap.String("task", nameID),
			zap.Int("status", client.StatusCode(err)),
			zap.Error(err))
		return outcomeOf(err)
	}

	t.logger.Info("Task completed", zap.String("task", nameID), zap.Any("reward", res.PrizeGotten))
	return Done
}
