package credential

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"sync"
)

// ErrInvalidSession marks an identity that can never log in again without
// human intervention. Loops stop for that identity when they see it.
var ErrInvalidSession = errors.New("invalid session")

type Credential struct {
	InitData   string
	StartParam string
}

type Provider interface {
	Credential(ctx context.Context) (Credential, error)
}

// Referral chooses the start parameter sent along with a login, weighted
// between the configured code and a fallback.
type Referral struct {
	Primary  string
	Fallback string
	Weight   int

	mu  sync.Mutex
	rng *rand.Rand
}

func NewReferral(primary, fallback string, weight int, rng *rand.Rand) *Referral {
	return &Referral{Primary: primary, Fallback: fallback, Weight: weight, rng: rng}
}

func (r *Referral) Pick() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Primary == "" || r.rng.Intn(100) >= r.Weight {
		return r.Fallback
	}
	return r.Primary
}

// StaticProvider hands out the init data captured for one session.
type StaticProvider struct {
	session  Session
	referral *Referral
}

func NewStaticProvider(session Session, referral *Referral) *StaticProvider {
	return &StaticProvider{session: session, referral: referral}
}

func (p *StaticProvider) Credential(ctx context.Context) (Credential, error) {
	if err := ctx.Err(); err != nil {
		return Credential{}, err
	}

	initData, err := ExtractInitData(p.session.Payload)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: %s: %v", ErrInvalidSession, p.session.Name, err)
	}

	cred := Credential{InitData: initData}
	if p.referral != nil {
		cred.StartParam = p.referral.Pick()
	}
	return cred, nil
}

// ExtractInitData accepts either raw init data or the full web-app URL the
// messenger opens, and returns the unescaped init data.
func ExtractInitData(payload string) (string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return "", errors.New("empty payload")
	}

	if _, rest, found := strings.Cut(payload, "tgWebAppData="); found {
		raw, _, _ := strings.Cut(rest, "&tgWebAppVersion")
		unescaped, err := url.QueryUnescape(raw)
		if err != nil {
			return "", fmt.Errorf("unescape web app data: %w", err)
		}
		payload = unescaped
	}

	values, err := url.ParseQuery(payload)
	if err != nil {
		return "", fmt.Errorf("parse init data: %w", err)
	}
	for _, key := range []string{"user", "hash"} {
		if values.Get(key) == "" {
			return "", fmt.Errorf("init data has no %s", key)
		}
	}
	return payload, nil
}
