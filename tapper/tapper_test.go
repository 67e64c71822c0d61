package tapper

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"
	"time"

	"boinkfarm/client"
	"boinkfarm/constant"
	"boinkfarm/credential"
	"boinkfarm/request"

	"go.uber.org/zap/zaptest"
)

// runCycles runs tp until it has slept through n full cycle intervals.
func runCycles(t *testing.T, tp *Tapper, clock *fakeClock, n int) error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cycles := 0
	clock.onSleep = func(d time.Duration) {
		if d == constant.CycleInterval {
			cycles++
			if cycles == n {
				cancel()
			}
		}
	}

	done := make(chan error, 1)
	go func() { done <- tp.Run(ctx) }()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
		return nil
	}
}

func TestSpinSlotMachineDrain(t *testing.T) {
	api := newFakeAPI(nil)
	tp := newTestTapper(t, api, &fakeClock{now: epoch})

	if got := tp.spinSlotMachine(context.Background(), 186); got != Done {
		t.Fatalf("outcome = %v, want done", got)
	}
	if want := []int{150, 25, 10, 1}; !reflect.DeepEqual(api.spins, want) {
		t.Fatalf("spins = %v, want %v", api.spins, want)
	}
}

func TestSpinSlotMachineAbortsOnFailure(t *testing.T) {
	api := newFakeAPI(nil)
	api.spinFails = map[int]error{2: refused(http.StatusBadRequest)}
	clock := &fakeClock{now: epoch}
	tp := newTestTapper(t, api, clock)

	if got := tp.spinSlotMachine(context.Background(), 186); got != Failed {
		t.Fatalf("outcome = %v, want failed", got)
	}
	if want := []int{150, 25}; !reflect.DeepEqual(api.spins, want) {
		t.Fatalf("spins = %v, want %v", api.spins, want)
	}
	if api.infoCalls != 0 {
		t.Fatalf("drain re-read user info %d times", api.infoCalls)
	}
	if want := []time.Duration{constant.SpinFailurePause}; !reflect.DeepEqual(clock.slept, want) {
		t.Fatalf("slept = %v, want %v", clock.slept, want)
	}
}

func TestUpgradeStopsOnFirstFailure(t *testing.T) {
	tests := []struct {
		name      string
		upgrades  int
		err       error
		wantCalls int
		want      Outcome
	}{
		{name: "always refused", upgrades: 0, wantCalls: 1, want: Done},
		{name: "two then refused", upgrades: 2, wantCalls: 3, want: Done},
		{name: "server error", upgrades: 0, err: refused(http.StatusInternalServerError), wantCalls: 1, want: Done},
		{name: "network", upgrades: 1, err: errNetwork, wantCalls: 2, want: Failed},
		{name: "unauthorized", upgrades: 0, err: refused(http.StatusUnauthorized), wantCalls: 1, want: Unauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(nil)
			api.upgrades = tt.upgrades
			api.upgradeErr = tt.err
			clock := &fakeClock{now: epoch}
			tp := newTestTapper(t, api, clock)

			if got := tp.upgrade(context.Background(), nil); got != tt.want {
				t.Fatalf("outcome = %v, want %v", got, tt.want)
			}
			if api.upgradeCalls != tt.wantCalls {
				t.Fatalf("upgrade calls = %d, want %d", api.upgradeCalls, tt.wantCalls)
			}
			if len(clock.slept) != tt.wantCalls {
				t.Fatalf("pauses = %d, want one per attempt", len(clock.slept))
			}
		})
	}
}

func TestClaimBooster(t *testing.T) {
	tests := []struct {
		name       string
		energy     int
		last       *time.Time
		wantClaim  bool
		wantOption int
	}{
		{name: "never claimed low energy", energy: 30, wantClaim: true, wantOption: 1},
		{name: "never claimed high energy", energy: 31, wantClaim: true, wantOption: 3},
		{name: "cooldown passed", energy: 5, last: at(epoch.Add(-2*time.Hour - 6*time.Minute)), wantClaim: true, wantOption: 1},
		{name: "cooldown running", energy: 5, last: at(epoch.Add(-2*time.Hour - 4*time.Minute)), wantClaim: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(nil)
			tp := newTestTapper(t, api, &fakeClock{now: epoch})

			outcome := tp.claimBooster(context.Background(), userInfo(tt.energy, tt.last, nil))
			if !tt.wantClaim {
				if outcome != Skipped || len(api.boosters) != 0 {
					t.Fatalf("outcome = %v, boosters = %v, want no claim", outcome, api.boosters)
				}
				return
			}
			if len(api.boosters) != 1 {
				t.Fatalf("boosters = %v, want one claim", api.boosters)
			}
			want := request.BoosterRequest{Multiplier: 2, OptionNumber: tt.wantOption}
			if api.boosters[0] != want {
				t.Fatalf("booster = %+v, want %+v", api.boosters[0], want)
			}
		})
	}
}

func TestCycleOrder(t *testing.T) {
	api := newFakeAPI(userInfo(6, nil, nil))
	api.actions = []request.RewardedAction{{NameID: "dailyLogin"}}
	tp := newTestTapper(t, api, &fakeClock{now: epoch})

	if got := tp.cycle(context.Background()); got != Done {
		t.Fatalf("outcome = %v, want done", got)
	}

	want := []string{
		"info", "booster",
		"info", "spin", "spin",
		"wheel",
		"info", "actions", "click:dailyLogin", "claim:dailyLogin",
		"upgrade",
	}
	if !reflect.DeepEqual(api.calls, want) {
		t.Fatalf("calls = %v\nwant    %v", api.calls, want)
	}
}

func TestCycleSkipsStepsWhenStatusFails(t *testing.T) {
	api := newFakeAPI(userInfo(10, nil, nil))
	api.token = "token"
	api.infoErrs = []error{&client.MalformedResponseError{Op: "user info", Field: "boinkers"}}
	clock := &fakeClock{now: epoch}
	tp := newTestTapper(t, api, clock)

	if err := runCycles(t, tp, clock, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
	if want := []string{"info"}; !reflect.DeepEqual(api.calls, want) {
		t.Fatalf("calls = %v, want %v", api.calls, want)
	}
	if want := []time.Duration{constant.CycleInterval}; !reflect.DeepEqual(clock.slept, want) {
		t.Fatalf("slept = %v, want %v", clock.slept, want)
	}
}

func TestRunRetriesFailedLogin(t *testing.T) {
	api := newFakeAPI(userInfo(0, at(epoch), nil))
	api.loginErrs = []error{errNetwork}
	api.upgrades = 0
	clock := &fakeClock{now: epoch}
	tp := newTestTapper(t, api, clock)

	var tokenDuringRetry *bool
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock.onSleep = func(d time.Duration) {
		if d == constant.LoginRetryDelay && tokenDuringRetry == nil {
			has := api.HasToken()
			tokenDuringRetry = &has
		}
		if d == constant.CycleInterval {
			cancel()
		}
	}

	if err := tp.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
	if api.logins != 2 {
		t.Fatalf("logins = %d, want 2", api.logins)
	}
	if tokenDuringRetry == nil || *tokenDuringRetry {
		t.Fatal("token must stay unset while the login is retried")
	}
	if !api.HasToken() {
		t.Fatal("token not attached after successful login")
	}
}

func TestRunStopsOnInvalidSession(t *testing.T) {
	api := newFakeAPI(nil)
	creds := &fakeCreds{err: credential.ErrInvalidSession}
	tp := New(Options{Name: "acc1", API: api, Credentials: creds, Clock: &fakeClock{now: epoch}, Logger: zaptest.NewLogger(t)})

	err := tp.Run(context.Background())
	if !errors.Is(err, credential.ErrInvalidSession) {
		t.Fatalf("Run = %v, want ErrInvalidSession", err)
	}
	if creds.calls != 1 || len(api.calls) != 0 {
		t.Fatalf("creds calls = %d, api calls = %v", creds.calls, api.calls)
	}
}

func TestRunStopsAfterRepeatedLoginRejections(t *testing.T) {
	api := newFakeAPI(nil)
	for i := 0; i < constant.MaxLoginRejections; i++ {
		api.loginErrs = append(api.loginErrs, refused(http.StatusUnauthorized))
	}
	clock := &fakeClock{now: epoch}
	tp := newTestTapper(t, api, clock)

	err := tp.Run(context.Background())
	if !errors.Is(err, credential.ErrInvalidSession) || !errors.Is(err, client.ErrUnauthorized) {
		t.Fatalf("Run = %v, want invalid session wrapping unauthorized", err)
	}
	if api.logins != constant.MaxLoginRejections {
		t.Fatalf("logins = %d, want %d", api.logins, constant.MaxLoginRejections)
	}
	if got := len(clock.slept); got != constant.MaxLoginRejections-1 {
		t.Fatalf("retry pauses = %d, want %d", got, constant.MaxLoginRejections-1)
	}
}

func TestRunRetriesRefusedLogin(t *testing.T) {
	for _, code := range []int{http.StatusForbidden, http.StatusUnauthorized} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			api := newFakeAPI(userInfo(0, at(epoch), nil))
			api.loginErrs = []error{refused(code)}
			clock := &fakeClock{now: epoch}
			tp := newTestTapper(t, api, clock)

			if err := runCycles(t, tp, clock, 1); !errors.Is(err, context.Canceled) {
				t.Fatalf("Run = %v, want context.Canceled", err)
			}
			if api.logins != 2 {
				t.Fatalf("logins = %d, want 2", api.logins)
			}
			if clock.slept[0] != constant.LoginRetryDelay {
				t.Fatalf("first pause = %s, want %s", clock.slept[0], constant.LoginRetryDelay)
			}
			if count(api.calls, "upgrade") != 1 {
				t.Fatalf("cycle did not run after the retry: %v", api.calls)
			}
		})
	}
}

func TestLoginRejectionStreakResets(t *testing.T) {
	api := newFakeAPI(userInfo(0, at(epoch), nil))
	for i := 0; i < constant.MaxLoginRejections-1; i++ {
		api.loginErrs = append(api.loginErrs, refused(http.StatusForbidden))
	}
	api.loginErrs = append(api.loginErrs, errNetwork)
	for i := 0; i < constant.MaxLoginRejections-1; i++ {
		api.loginErrs = append(api.loginErrs, refused(http.StatusForbidden))
	}
	clock := &fakeClock{now: epoch}
	tp := newTestTapper(t, api, clock)

	if err := runCycles(t, tp, clock, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
	if want := 2 * constant.MaxLoginRejections; api.logins != want {
		t.Fatalf("logins = %d, want %d", api.logins, want)
	}
}

func TestRunReauthenticatesAfterUnauthorized(t *testing.T) {
	api := newFakeAPI(userInfo(0, at(epoch), nil))
	api.infoErrs = []error{refused(http.StatusUnauthorized)}
	clock := &fakeClock{now: epoch}
	tp := newTestTapper(t, api, clock)

	if err := runCycles(t, tp, clock, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
	if api.logins != 2 {
		t.Fatalf("logins = %d, want 2", api.logins)
	}
	if count(api.calls, "upgrade") != 1 {
		t.Fatalf("second cycle did not run: %v", api.calls)
	}
}

func TestRunBacksOffWhenTokenKeepsFailing(t *testing.T) {
	api := newFakeAPI(userInfo(0, at(epoch), nil))
	api.infoErrs = []error{refused(http.StatusUnauthorized), refused(http.StatusForbidden)}
	clock := &fakeClock{now: epoch}
	tp := newTestTapper(t, api, clock)

	if err := runCycles(t, tp, clock, 2); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
	if api.logins != 3 {
		t.Fatalf("logins = %d, want 3", api.logins)
	}
	want := []time.Duration{constant.LoginRetryDelay, constant.CycleInterval}
	if !reflect.DeepEqual(clock.slept[:2], want) {
		t.Fatalf("slept = %v, want it to start with %v", clock.slept, want)
	}
}

func TestWheelSpunOncePerLifetime(t *testing.T) {
	api := newFakeAPI(userInfo(0, at(epoch), nil))
	clock := &fakeClock{now: epoch}
	tp := newTestTapper(t, api, clock)

	if err := runCycles(t, tp, clock, 3); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
	if api.wheelCalls != 1 {
		t.Fatalf("wheel spun %d times, want 1", api.wheelCalls)
	}
	if api.logins != 1 {
		t.Fatalf("logins = %d, want 1", api.logins)
	}
	if got := count(api.calls, "upgrade"); got != 3 {
		t.Fatalf("upgrade loops = %d, want 3", got)
	}
}

type recorder struct {
	names []string
}

func (r *recorder) Report(name string, info *request.UserInfo, at time.Time) {
	r.names = append(r.names, name)
}

func TestCycleReportsStatus(t *testing.T) {
	api := newFakeAPI(userInfo(0, at(epoch), nil))
	rec := &recorder{}
	tp := New(Options{Name: "acc1", API: api, Credentials: &fakeCreds{}, Clock: &fakeClock{now: epoch}, Reporter: rec})

	tp.cycle(context.Background())
	if !reflect.DeepEqual(rec.names, []string{"acc1"}) {
		t.Fatalf("reports = %v", rec.names)
	}
}

func TestOutcomeString(t *testing.T) {
	if Unauthorized.String() != "unauthorized" || Outcome(42).String() != "outcome(42)" {
		t.Fatal("unexpected outcome names")
	}
}
