package notify

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"boinkfarm/format"
	"boinkfarm/request"
)

type Snapshot struct {
	Name      string
	Level     int
	Coins     float64
	Crypto    float64
	Energy    int
	UpdatedAt time.Time
}

// Board keeps the latest status of every farmed session for reporting. It
// is written by the farming loops and read by the bot.
type Board struct {
	mu    sync.RWMutex
	snaps map[string]Snapshot
}

func NewBoard(names ...string) *Board {
	b := &Board{snaps: make(map[string]Snapshot, len(names))}
	for _, name := range names {
		b.snaps[name] = Snapshot{Name: name}
	}
	return b
}

func (b *Board) Report(name string, info *request.UserInfo, at time.Time) {
	snap := Snapshot{
		Name:      name,
		Level:     info.Level(),
		Energy:    info.Energy(),
		UpdatedAt: at,
	}
	if info.CurrencySoft != nil {
		snap.Coins = *info.CurrencySoft
	}
	if info.CurrencyCrypto != nil {
		snap.Crypto = *info.CurrencyCrypto
	}

	b.mu.Lock()
	b.snaps[name] = snap
	b.mu.Unlock()
}

// Snapshots returns a copy sorted by session name.
func (b *Board) Snapshots() []Snapshot {
	b.mu.RLock()
	out := make([]Snapshot, 0, len(b.snaps))
	for _, s := range b.snaps {
		out = append(out, s)
	}
	b.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func FormatReport(snaps []Snapshot, now time.Time) string {
	var lines []string
	lines = append(lines, "🔍 Boinkers Farm Report")
	lines = append(lines, fmt.Sprintf("📊 Total Accounts: %d\n", len(snaps)))

	var reported int
	var totalCoins, totalCrypto float64
	for i, s := range snaps {
		prefix := fmt.Sprintf("%d. %s", i+1, s.Name)
		if s.UpdatedAt.IsZero() {
			lines = append(lines, prefix+"\n⏳ Waiting for first status\n")
			continue
		}

		reported++
		totalCoins += s.Coins
		totalCrypto += s.Crypto
		lines = append(lines, fmt.Sprintf("%s\n Level: %d | Coins: %s | Shit: %s | Spins: %d\n Updated: %s\n",
			prefix, s.Level, format.Int(s.Coins), format.Number(s.Crypto, 3), s.Energy,
			s.UpdatedAt.In(reportLocation()).Format("15:04:05")))
	}

	if reported > 0 {
		lines = append(lines, "📈 Summary:")
		lines = append(lines, fmt.Sprintf("• Reporting: %d/%d", reported, len(snaps)))
		lines = append(lines, fmt.Sprintf("• Total Coins: %s", format.Int(totalCoins)))
		lines = append(lines, fmt.Sprintf("• Average Coins: %s", format.Int(totalCoins/float64(reported))))
		lines = append(lines, fmt.Sprintf("• Total Shit: %s", format.Number(totalCrypto, 3)))
	}

	lines = append(lines, fmt.Sprintf("\n🕒 %s", now.In(reportLocation()).Format("2006-01-02 15:04:05 MST")))
	return strings.Join(lines, "\n")
}

func reportLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		return time.UTC
	}
	return loc
}
