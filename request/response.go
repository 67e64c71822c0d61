package request

import (
	"time"
)

type LoginResponse struct {
	Token string `json:"token"`
}

type UserInfo struct {
	ID             string                          `json:"_id"`
	UserName       string                          `json:"userName"`
	CurrencySoft   *float64                        `json:"currencySoft"`
	CurrencyCrypto *float64                        `json:"currencyCrypto"`
	Boinkers       *Boinkers                       `json:"boinkers"`
	GamesEnergy    GamesEnergy                     `json:"gamesEnergy"`
	Rewarded       map[string]RewardedActionRecord `json:"rewardedActions"`
}

type Boinkers struct {
	CurrentBoinkerProgression struct {
		Level int `json:"level"`
	} `json:"currentBoinkerProgression"`
	Booster struct {
		X2 struct {
			LastTimeFreeOptionClaimed *Timestamp `json:"lastTimeFreeOptionClaimed"`
		} `json:"x2"`
	} `json:"booster"`
}

type GamesEnergy struct {
	SlotMachine struct {
		Energy *int `json:"energy"`
	} `json:"slotMachine"`
}

type RewardedActionRecord struct {
	ClaimDateTime *Timestamp `json:"claimDateTime"`
}

// ClaimedAt is nil when the record carries no readable claim date.
func (r *RewardedActionRecord) ClaimedAt() *time.Time {
	return r.ClaimDateTime.Ptr()
}

// MissingField reports the first required key absent from the snapshot.
func (u *UserInfo) MissingField() string {
	switch {
	case u.Boinkers == nil:
		return "boinkers"
	case u.GamesEnergy.SlotMachine.Energy == nil:
		return "gamesEnergy.slotMachine.energy"
	}
	return ""
}

func (u *UserInfo) Level() int {
	if u.Boinkers == nil {
		return 0
	}
	return u.Boinkers.CurrentBoinkerProgression.Level
}

func (u *UserInfo) Energy() int {
	if u.GamesEnergy.SlotMachine.Energy == nil {
		return 0
	}
	return *u.GamesEnergy.SlotMachine.Energy
}

// LastBoosterClaim is nil when the free x2 booster was never taken or its
// date could not be read.
func (u *UserInfo) LastBoosterClaim() *time.Time {
	if u.Boinkers == nil {
		return nil
	}
	return u.Boinkers.Booster.X2.LastTimeFreeOptionClaimed.Ptr()
}

// RewardRecord returns the claim record for nameID, or nil when unclaimed.
func (u *UserInfo) RewardRecord(nameID string) *RewardedActionRecord {
	rec, ok := u.Rewarded[nameID]
	if !ok {
		return nil
	}
	return &rec
}

type UpgradeResponse struct {
	NewSoftCurrencyAmount *float64 `json:"newSoftCurrencyAmount"`
	NewSlotMachineEnergy  *int     `json:"newSlotMachineEnergy"`
	Rank                  *int     `json:"rank"`
}

func (r *UpgradeResponse) MissingField() string {
	switch {
	case r.NewSoftCurrencyAmount == nil:
		return "newSoftCurrencyAmount"
	case r.NewSlotMachineEnergy == nil:
		return "newSlotMachineEnergy"
	case r.Rank == nil:
		return "rank"
	}
	return ""
}

type WheelResponse struct {
	Prize *WheelPrize `json:"prize"`
}

type WheelPrize struct {
	PrizeName  string `json:"prizeName"`
	PrizeValue any    `json:"prizeValue"`
}

type SlotResponse struct {
	Prize *SlotPrize `json:"prize"`
}

type SlotPrize struct {
	PrizeTypeName string `json:"prizeTypeName"`
	PrizeValue    any    `json:"prizeValue"`
}

type RewardedAction struct {
	NameID string `json:"nameId"`
}

type ClaimResponse struct {
	PrizeGotten any `json:"prizeGotten"`
}

type ProxyIPResponse struct {
	Origin string `json:"origin"`
}
