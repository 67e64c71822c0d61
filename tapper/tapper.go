package tapper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"boinkfarm/client"
	"boinkfarm/constant"
	"boinkfarm/credential"
	"boinkfarm/format"
	"boinkfarm/request"

	"go.uber.org/zap"
)

// API is the subset of the game client the loop drives.
type API interface {
	Login(ctx context.Context, initData string) (string, error)
	SetToken(token string)
	ClearToken()
	HasToken() bool

	UserInfo(ctx context.Context) (*request.UserInfo, error)
	UpgradeBoinker(ctx context.Context) (*request.UpgradeResponse, error)
	AddBooster(ctx context.Context, booster request.BoosterRequest) error
	SpinWheelOfFortune(ctx context.Context) (*request.WheelResponse, error)
	SpinSlotMachine(ctx context.Context, amount int) (*request.SlotResponse, error)
	RewardedActions(ctx context.Context) ([]request.RewardedAction, error)
	ClickRewardedAction(ctx context.Context, nameID string) error
	AdWatched(ctx context.Context, providerID string) error
	ClaimRewardedAction(ctx context.Context, nameID string) (*request.ClaimResponse, error)
}

// Reporter receives every fresh status snapshot.
type Reporter interface {
	Report(name string, info *request.UserInfo, at time.Time)
}

type Outcome int

const (
	Done Outcome = iota
	Skipped
	Failed
	Unauthorized
)

func (o Outcome) String() string {
	switch o {
	case Done:
		return "done"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	case Unauthorized:
		return "unauthorized"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

func outcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return Done
	case errors.Is(err, client.ErrUnauthorized):
		return Unauthorized
	}
	return Failed
}

type Options struct {
	Name          string
	API           API
	Credentials   credential.Provider
	Clock         Clock
	Logger        *zap.Logger
	Reporter      Reporter
	CycleInterval time.Duration
}

// Tapper farms one identity. It is driven by a single goroutine.
type Tapper struct {
	name          string
	api           API
	creds         credential.Provider
	clock         Clock
	logger        *zap.Logger
	reporter      Reporter
	cycleInterval time.Duration
	skipped       map[string]struct{}

	loggedIn  bool
	wheelSpun bool

	loginRejections int
	rejectedCycles  int
}

func New(opts Options) *Tapper {
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.CycleInterval <= 0 {
		opts.CycleInterval = constant.CycleInterval
	}

	skipped := make(map[string]struct{}, len(constant.SkippedTasks))
	for _, id := range constant.SkippedTasks {
		skipped[id] = struct{}{}
	}

	return &Tapper{
		name:          opts.Name,
		api:           opts.API,
		creds:         opts.Credentials,
		clock:         opts.Clock,
		logger:        opts.Logger.With(zap.String("session", opts.Name)),
		reporter:      opts.Reporter,
		cycleInterval: opts.CycleInterval,
		skipped:       skipped,
	}
}

// Run farms until ctx is cancelled or the identity turns out to be invalid:
// the credential provider gives up, or constant.MaxLoginRejections logins in a row
// are refused. Only credential.ErrInvalidSession and context errors are
// returned.
func (t *Tapper) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !t.api.HasToken() {
			if err := t.authenticate(ctx); err != nil {
				if errors.Is(err, credential.ErrInvalidSession) {
					t.logger.Error("Invalid session", zap.Error(err))
					return err
				}
				t.logger.Error("Login failed", zap.Error(err))
				if err := t.clock.Sleep(ctx, constant.LoginRetryDelay); err != nil {
					return err
				}
				continue
			}
		}

		if t.cycle(ctx) == Unauthorized {
			t.rejectedCycles++
			// A token that keeps getting refused right after login waits a
			// full cycle before the next attempt.
			delay := constant.LoginRetryDelay
			if t.rejectedCycles > 1 {
				delay = t.cycleInterval
			}
			t.logger.Warn("Token rejected, logging in again",
				zap.Int("times", t.rejectedCycles),
				zap.Duration("wait", delay))
			t.api.ClearToken()
			if err := t.clock.Sleep(ctx, delay); err != nil {
				return err
			}
			continue
		}
		t.rejectedCycles = 0

		t.logger.Info("Cycle finished", zap.Duration("sleep", t.cycleInterval))
		if err := t.clock.Sleep(ctx, t.cycleInterval); err != nil {
			return err
		}
	}
}

func (t *Tapper) authenticate(ctx context.Context) error {
	t.api.ClearToken()

	cred, err := t.creds.Credential(ctx)
	if err != nil {
		return err
	}

	token, err := t.api.Login(ctx, cred.InitData)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			t.loginRejections++
			if t.loginRejections >= constant.MaxLoginRejections {
				return fmt.Errorf("%w: login refused %d times in a row: %w",
					credential.ErrInvalidSession, t.loginRejections, err)
			}
			return err
		}
		t.loginRejections = 0
		if client.StatusCode(err) == 520 {
			t.logger.Warn("Relogin")
			if err := t.clock.Sleep(ctx, constant.RelogDelay); err != nil {
				return err
			}
		}
		return err
	}

	t.loginRejections = 0
	t.api.SetToken(token)
	if !t.loggedIn {
		t.logger.Info("Logged in successfully", zap.String("startParam", cred.StartParam))
		t.loggedIn = true
	}
	return nil
}

type step struct {
	name string
	run  func(ctx context.Context, info *request.UserInfo) Outcome
}

// cycle runs one pass over every reward source. It stops early only when
// the token is rejected or ctx is done.
func (t *Tapper) cycle(ctx context.Context) Outcome {
	info, err := t.api.UserInfo(ctx)
	if err != nil {
		t.logger.Warn("Failed to fetch user info", zap.Error(err))
		return outcomeOf(err)
	}
	t.logStatus(info)
	if t.reporter != nil {
		t.reporter.Report(t.name, info, t.clock.Now())
	}
	t.pause(ctx, constant.StatusPause)

	steps := []step{
		{name: "booster", run: t.claimBooster},
		{name: "slot machine", run: t.drainSlotMachine},
		{name: "wheel of fortune", run: t.spinWheelOnce},
		{name: "rewarded actions", run: t.sweep},
		{name: "upgrade", run: t.upgrade},
	}
	for _, s := range steps {
		if ctx.Err() != nil {
			return Failed
		}
		outcome := s.run(ctx, info)
		t.logger.Debug("Step finished", zap.String("step", s.name), zap.Stringer("outcome", outcome))
		if outcome == Unauthorized {
			return Unauthorized
		}
	}
	return Done
}

// pause sleeps between calls. A cancelled ctx makes the next call fail
// immediately, so the error needs no handling here.
func (t *Tapper) pause(ctx context.Context, d time.Duration) {
	_ = t.clock.Sleep(ctx, d)
}

func (t *Tapper) logStatus(info *request.UserInfo) {
	fields := []zap.Field{zap.String("level", format.Int(float64(info.Level())))}
	if info.CurrencySoft != nil {
		fields = append(fields, zap.String("coins", format.Int(*info.CurrencySoft)))
	}
	if info.CurrencyCrypto != nil {
		fields = append(fields, zap.String("shit", format.Number(*info.CurrencyCrypto, 3)))
	}
	t.logger.Info("Account status", fields...)
}
