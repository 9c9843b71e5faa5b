package notifier

import (
	"fmt"
	"strings"
	"time"

	"CandleDream/internal/chart"
)

// FormatStatus formats a session status into a Telegram message.
func FormatStatus(st *chart.Status) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>CandleDream %s</b> | %s\n\n", st.Symbol, time.Now().Format("2006-01-02 15:04")))

	b.WriteString(fmt.Sprintf("Reality: %.2f\n", st.RealityPrice))
	if st.DreamActive {
		gap := st.DreamPrice - st.RealityPrice
		b.WriteString(fmt.Sprintf("Dream: %.2f (%+.2f)\n", st.DreamPrice, gap))
	}
	b.WriteString("\n")

	ind := st.Indicators
	b.WriteString("📈 <b>Window:</b>\n")
	b.WriteString(fmt.Sprintf("  SMA10: %.2f | SMA30: %.2f\n", ind.SMAFast, ind.SMASlow))
	b.WriteString(fmt.Sprintf("  RSI14: %.0f\n", ind.RSI))
	b.WriteString(fmt.Sprintf("  Range: %.2f ~ %.2f (%.0f%%)\n", ind.Low, ind.High, ind.Position*100))
	b.WriteString(fmt.Sprintf("  Green candles: %.0f%%\n\n", ind.GreenRatio*100))

	b.WriteString(FormatPosition(st))
	return b.String()
}

// FormatPosition formats the position panel.
func FormatPosition(st *chart.Status) string {
	p := st.Position
	icon := "🟢"
	if p.PnL < 0 {
		icon = "🔴"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("💰 <b>Position:</b> %s %g %s @ %.2f\n", p.Side, p.Size, p.Symbol, p.Entry))
	b.WriteString(fmt.Sprintf("   Mark: %.2f | Value: %.2f\n", p.Price, p.Value))
	b.WriteString(fmt.Sprintf("   %s P&L: %+.2f (%+.2f%%)\n", icon, p.PnL, p.PnLPct))
	return b.String()
}

// FormatActivated formats the message sent once the dream overlay is up.
func FormatActivated(st *chart.Status) string {
	var b strings.Builder
	b.WriteString("✨ <b>Dream overlay on</b>\n\n")
	b.WriteString(fmt.Sprintf("Reality: %.2f | Dream: %.2f\n\n", st.RealityPrice, st.DreamPrice))
	b.WriteString(FormatPosition(st))
	return b.String()
}
