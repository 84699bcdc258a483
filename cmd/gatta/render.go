package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"gatta/internal/models"
	"gatta/internal/potview"
)

var meetingLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// parseMeetingTime accepts RFC3339, or a local date and time in loc
func parseMeetingTime(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	for _, layout := range meetingLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid meeting time %q: use RFC3339 or \"2006-01-02 15:04\"", raw)
}

func renderPot(w io.Writer, pot models.Pot, summary models.PotSummary, organizer bool) {
	fmt.Fprintf(w, "%s\n", pot.Title)
	if organizer {
		fmt.Fprintln(w, "You are the organizer of this pot")
	}
	fmt.Fprintf(w, "%s\n", strings.Repeat("─", 40))
	fmt.Fprintf(w, "Total %s • %d seats • %s each\n",
		potview.FormatAmount(pot.Total), summary.SeatCount, potview.FormatAmount(summary.Share))
	fmt.Fprintf(w, "Paid %d/%d (%d%%)", summary.PaidCount, summary.SeatCount, summary.Progress)
	if summary.IsFull {
		fmt.Fprint(w, " • full")
	}
	fmt.Fprintln(w)
	if summary.Remaining != "" {
		fmt.Fprintf(w, "⏳ %s\n", summary.Remaining)
	}
	if pot.BankName != "" || pot.IBAN != "" {
		fmt.Fprintf(w, "Transfer to: %s\n", strings.TrimSpace(pot.BankName+" "+pot.IBAN))
	}
	fmt.Fprintln(w)

	for i, seat := range potview.DisplayOrder(pot.Seats) {
		if seat.Vacant() {
			fmt.Fprintf(w, "  ○ (vacant)\n")
			continue
		}
		mark := "·"
		if seat.Paid {
			mark = "✓"
		}
		line := fmt.Sprintf("  %s %s", mark, seat.Name)
		if i == 0 {
			line += " (organizer)"
		}
		line += "  [" + seat.ID + "]"
		fmt.Fprintln(w, line)
	}
}
