package tapper

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"boinkfarm/client"
	"boinkfarm/credential"
	"boinkfarm/request"

	"go.uber.org/zap/zaptest"
)

var epoch = time.Date(2024, 9, 20, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	now     time.Time
	slept   []time.Duration
	onSleep func(d time.Duration)
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
	if c.onSleep != nil {
		c.onSleep(d)
	}
	return ctx.Err()
}

type fakeCreds struct {
	err   error
	calls int
}

func (f *fakeCreds) Credential(ctx context.Context) (credential.Credential, error) {
	f.calls++
	if f.err != nil {
		return credential.Credential{}, f.err
	}
	return credential.Credential{InitData: "user=%7B%7D&hash=abc", StartParam: "ref"}, nil
}

var errNetwork = errors.New("connection reset by peer")

func refused(code int) error {
	return &client.StatusError{Op: "test", Code: code}
}

type fakeAPI struct {
	token string

	loginErrs []error
	logins    int

	info      *request.UserInfo
	infoErrs  []error
	infoCalls int

	boosters   []request.BoosterRequest
	boosterErr error

	spins     []int
	spinFails map[int]error

	wheelCalls int

	actions   []request.RewardedAction
	clickErrs map[string]error
	clicks    []string
	watched   []string
	claims    []string

	upgrades     int
	upgradeErr   error
	upgradeCalls int

	calls []string
}

func newFakeAPI(info *request.UserInfo) *fakeAPI {
	return &fakeAPI{info: info}
}

func (a *fakeAPI) Login(ctx context.Context, initData string) (string, error) {
	a.logins++
	a.calls = append(a.calls, "login")
	if len(a.loginErrs) > 0 {
		err := a.loginErrs[0]
		a.loginErrs = a.loginErrs[1:]
		if err != nil {
			return "", err
		}
	}
	return "token", nil
}

func (a *fakeAPI) SetToken(token string) { a.token = token }
func (a *fakeAPI) ClearToken() { a.token = "" }
func (a *fakeAPI) HasToken() bool { return a.token != "" }

func (a *fakeAPI) UserInfo(ctx context.Context) (*request.UserInfo, error) {
	a.infoCalls++
	a.calls = append(a.calls, "info")
	if len(a.infoErrs) > 0 {
		err := a.infoErrs[0]
		a.infoErrs = a.infoErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return a.info, nil
}

func (a *fakeAPI) UpgradeBoinker(ctx context.Context) (*request.UpgradeResponse, error) {
	a.upgradeCalls++
	a.calls = append(a.calls, "upgrade")
	if a.upgradeCalls > a.upgrades {
		if a.upgradeErr != nil {
			return nil, a.upgradeErr
		}
		return nil, refused(http.StatusBadRequest)
	}
	coins, spins, rank := 1000.0, 5, 2
	return &request.UpgradeResponse{NewSoftCurrencyAmount: &coins, NewSlotMachineEnergy: &spins, Rank: &rank}, nil
}

func (a *fakeAPI) AddBooster(ctx context.Context, booster request.BoosterRequest) error {
	a.calls = append(a.calls, "booster")
	a.boosters = append(a.boosters, booster)
	return a.boosterErr
}

func (a *fakeAPI) SpinWheelOfFortune(ctx context.Context) (*request.WheelResponse, error) {
	a.wheelCalls++
	a.calls = append(a.calls, "wheel")
	return &request.WheelResponse{Prize: &request.WheelPrize{PrizeName: "coins", PrizeValue: 100}}, nil
}

func (a *fakeAPI) SpinSlotMachine(ctx context.Context, amount int) (*request.SlotResponse, error) {
	a.calls = append(a.calls, "spin")
	a.spins = append(a.spins, amount)
	if err := a.spinFails[len(a.spins)]; err != nil {
		return nil, err
	}
	return &request.SlotResponse{Prize: &request.SlotPrize{PrizeTypeName: "coins", PrizeValue: amount * 10}}, nil
}

func (a *fakeAPI) RewardedActions(ctx context.Context) ([]request.RewardedAction, error) {
	a.calls = append(a.calls, "actions")
	return a.actions, nil
}

func (a *fakeAPI) ClickRewardedAction(ctx context.Context, nameID string) error {
	a.calls = append(a.calls, "click:"+nameID)
	a.clicks = append(a.clicks, nameID)
	return a.clickErrs[nameID]
}

func (a *fakeAPI) AdWatched(ctx context.Context, providerID string) error {
	a.calls = append(a.calls, "watched:"+providerID)
	a.watched = append(a.watched, providerID)
	return nil
}

func (a *fakeAPI) ClaimRewardedAction(ctx context.Context, nameID string) (*request.ClaimResponse, error) {
	a.calls = append(a.calls, "claim:"+nameID)
	a.claims = append(a.claims, nameID)
	return &request.ClaimResponse{PrizeGotten: 500}, nil
}

func userInfo(energy int, lastBooster *time.Time, records map[string]request.RewardedActionRecord) *request.UserInfo {
	coins, crypto := 15000.0, 0.25
	info := &request.UserInfo{
		CurrencySoft:   &coins,
		CurrencyCrypto: &crypto,
		Boinkers:       &request.Boinkers{},
		Rewarded:       records,
	}
	info.Boinkers.CurrentBoinkerProgression.Level = 3
	if lastBooster != nil {
		info.Boinkers.Booster.X2.LastTimeFreeOptionClaimed = request.NewTimestamp(*lastBooster)
	}
	info.GamesEnergy.SlotMachine.Energy = &energy
	return info
}

func at(t time.Time) *time.Time { return &t }

func newTestTapper(t *testing.T, api *fakeAPI, clock *fakeClock) *Tapper {
	t.Helper()
	return New(Options{
		Name:        "acc1",
		API:         api,
		Credentials: &fakeCreds{},
		Clock:       clock,
		Logger:      zaptest.NewLogger(t),
	})
}

func count(calls []string, name string) int {
	n := 0
	for _, c := range calls {
		if c == name {
			n++
		}
	}
	return n
}
