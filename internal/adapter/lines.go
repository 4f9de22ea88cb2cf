package adapter

import (
	"strings"

	"github.com/yourusername/gridiron-metrics/internal/models"
)

// DefaultProviderPreference is the bookmaker order used when none is configured.
var DefaultProviderPreference = []string{"DraftKings", "ESPN Bet"}

// SelectLine picks the line a game is evaluated with. The first preferred
// provider quoting both moneylines wins; otherwise the first preferred
// provider quoting a spread is returned as a spread-only line; otherwise nil.
// Providers outside the preference list are ignored.
func SelectLine(lines []models.BettingLine, preference []string) *models.BettingLine {
	if len(preference) == 0 {
		preference = DefaultProviderPreference
	}

	for _, p := range preference {
		for i := range lines {
			if sameProvider(lines[i].Provider, p) && lines[i].HasMoneylines() {
				l := lines[i]
				return &l
			}
		}
	}

	for _, p := range preference {
		for i := range lines {
			if sameProvider(lines[i].Provider, p) && lines[i].HasSpread() {
				l := lines[i]
				l.HomeMoneyline, l.AwayMoneyline = nil, nil
				return &l
			}
		}
	}
	return nil
}

func sameProvider(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
