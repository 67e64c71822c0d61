package constant

import (
	"time"
)

const (
	BaseURL       = "https://boink.astronomica.io"
	Platform      = "android"
	ProxyCheckURL = "https://httpbin.org/ip"

	LoginPath               = "/public/users/loginByTelegram"
	UserInfoPath            = "/api/users/me"
	UpgradeBoinkerPath      = "/api/boinkers/upgradeBoinker"
	AddBoosterPath          = "/api/boinkers/addShitBooster"
	SpinWheelOfFortunePath  = "/api/play/spinWheelOfFortune"
	SpinSlotMachinePath     = "/api/play/spinSlotMachine/$%d"
	RewardedActionListPath  = "/api/rewardedActions/getRewardedActionList"
	RewardedActionClickPath = "/api/rewardedActions/rewardedActionClicked/%s"
	AdWatchedPath           = "/api/rewardedActions/ad-watched"
	RewardedActionClaimPath = "/api/rewardedActions/claimRewardedAction/%s"
)

const (
	CycleInterval     = 600 * time.Second
	LoginRetryDelay   = 3 * time.Second
	RelogDelay        = 5 * time.Second
	StatusPause       = 2 * time.Second
	StepPause         = 4 * time.Second
	UpgradePause      = 3 * time.Second
	SpinFailurePause  = 2 * time.Second
	ClickToClaimDelay = 10 * time.Second
	AdClickDelay      = 15 * time.Second
	AdWatchedDelay    = 20 * time.Second
	ActionThrottle    = 1 * time.Second
	ProxyCheckTimeout = 5 * time.Second

	BoosterCooldown        = 2*time.Hour + 5*time.Minute
	BoosterEnergyThreshold = 30
	BoosterMultiplier      = 2

	// MaxLoginRejections consecutive 401/403 answers to a login end the identity.
	MaxLoginRejections = 5
)

const (
	DefaultRefID  = "boink355876562"
	RefIDWeight   = 75
	SendRetries   = 3
	RetryInterval = 1 * time.Second
)

// SkippedTasks need manual steps on a social platform and are never attempted.
var SkippedTasks = []string{
	"twitterQuotePost20",
	"telegramShareStory5",
	"emojiOnPostTelegramNewsChannel",
	"NotGoldReward",
	"NotPlatinumReward",
	"connectTonWallet",
	"telegramJoinBoinkersNewsChannel",
	"telegramJoinAcidGames",
	"inviteAFriend",
}
