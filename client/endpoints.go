package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"boinkfarm/constant"
	"boinkfarm/request"
)

// Login exchanges web-app init data for a session token. It does not attach
// the token; callers decide when to call SetToken.
func (c *Client) Login(ctx context.Context, initData string) (string, error) {
	var res request.LoginResponse
	err := c.do(ctx, "login", http.MethodPost, constant.LoginPath,
		request.LoginRequest{InitDataString: initData}, &res)
	if err != nil {
		return "", err
	}
	if res.Token == "" {
		return "", &MalformedResponseError{Op: "login", Field: "token"}
	}
	return res.Token, nil
}

func (c *Client) UserInfo(ctx context.Context) (*request.UserInfo, error) {
	var info request.UserInfo
	if err := c.do(ctx, "user info", http.MethodGet, constant.UserInfoPath, nil, &info); err != nil {
		return nil, err
	}
	if field := info.MissingField(); field != "" {
		return nil, &MalformedResponseError{Op: "user info", Field: field}
	}
	return &info, nil
}

// UpgradeBoinker returns a StatusError when the server refuses the upgrade,
// which in practice means the balance ran out.
func (c *Client) UpgradeBoinker(ctx context.Context) (*request.UpgradeResponse, error) {
	var res request.UpgradeResponse
	if err := c.do(ctx, "upgrade boinker", http.MethodPost, constant.UpgradeBoinkerPath, nil, &res); err != nil {
		return nil, err
	}
	if field := res.MissingField(); field != "" {
		return nil, &MalformedResponseError{Op: "upgrade boinker", Field: field}
	}
	return &res, nil
}

func (c *Client) AddBooster(ctx context.Context, booster request.BoosterRequest) error {
	return c.do(ctx, "add booster", http.MethodPost, constant.AddBoosterPath, booster, nil)
}

func (c *Client) SpinWheelOfFortune(ctx context.Context) (*request.WheelResponse, error) {
	var res request.WheelResponse
	if err := c.do(ctx, "spin wheel", http.MethodPost, constant.SpinWheelOfFortunePath, nil, &res); err != nil {
		return nil, err
	}
	if res.Prize == nil {
		return nil, &MalformedResponseError{Op: "spin wheel", Field: "prize"}
	}
	return &res, nil
}

func (c *Client) SpinSlotMachine(ctx context.Context, amount int) (*request.SlotResponse, error) {
	var res request.SlotResponse
	path := fmt.Sprintf(constant.SpinSlotMachinePath, amount)
	if err := c.do(ctx, "spin slot machine", http.MethodPost, path, nil, &res); err != nil {
		return nil, err
	}
	if res.Prize == nil {
		return nil, &MalformedResponseError{Op: "spin slot machine", Field: "prize"}
	}
	return &res, nil
}

func (c *Client) RewardedActions(ctx context.Context) ([]request.RewardedAction, error) {
	var actions []request.RewardedAction
	if err := c.do(ctx, "rewarded actions", http.MethodGet, constant.RewardedActionListPath, nil, &actions); err != nil {
		return nil, err
	}
	return actions, nil
}

func (c *Client) ClickRewardedAction(ctx context.Context, nameID string) error {
	path := fmt.Sprintf(constant.RewardedActionClickPath, url.PathEscape(nameID))
	return c.do(ctx, "click rewarded action", http.MethodPost, path, nil, nil)
}

func (c *Client) AdWatched(ctx context.Context, providerID string) error {
	return c.do(ctx, "ad watched", http.MethodPost, constant.AdWatchedPath,
		request.AdWatchedRequest{ProviderID: providerID}, nil)
}

func (c *Client) ClaimRewardedAction(ctx context.Context, nameID string) (*request.ClaimResponse, error) {
	var res request.ClaimResponse
	path := fmt.Sprintf(constant.RewardedActionClaimPath, url.PathEscape(nameID))
	if err := c.do(ctx, "claim rewarded action", http.MethodPost, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ProxyIP reports the address the game sees, through the session's proxy.
func (c *Client) ProxyIP(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, constant.ProxyCheckTimeout)
	defer cancel()

	var res request.ProxyIPResponse
	if err := c.do(ctx, "proxy check", http.MethodGet, c.proxyCheckURL, nil, &res); err != nil {
		return "", err
	}
	return res.Origin, nil
}
