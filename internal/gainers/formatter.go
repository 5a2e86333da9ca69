package gainers

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const bannerWidth = 100

// Format renders reports as a fixed-width text table. Pure and
// deterministic given the reports and the time label.
func Format(reports []Report, now time.Time) string {
	if len(reports) == 0 {
		return "No gainers found."
	}

	banner := strings.Repeat("=", bannerWidth)

	var b strings.Builder
	b.WriteString(banner + "\n")
	b.WriteString(fmt.Sprintf("TOP %d GAINERS - %s\n", len(reports), now.Format("2006-01-02 15:04:05")))
	b.WriteString(banner + "\n")
	b.WriteString(fmt.Sprintf("%-8s %-25s %10s %14s %8s %8s\n",
		"Ticker", "Name", "Current$", "Volume", "Win%", "Day%"))
	b.WriteString(strings.Repeat("-", bannerWidth) + "\n")

	for _, r := range reports {
		name := r.Name
		// Truncate by rune, not byte, so multi-byte names stay valid UTF-8
		if runes := []rune(name); len(runes) > 24 {
			name = string(runes[:24])
		}

		b.WriteString(fmt.Sprintf("%-8s %-25s $%9.4f %14s %+7.2f%% %+7.2f%%\n",
			r.Ticker,
			name,
			r.Price,
			humanize.Comma(r.Volume),
			r.WindowGainPct,
			r.DayGainPct,
		))
	}

	b.WriteString(banner)
	return b.String()
}
