package potview

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gatta/internal/models"
)

// ShareLink builds the /s/{potId} link. The org marker only tells the web UI
// to show organizer tools; the capability itself is the organizer token.
func ShareLink(baseURL, potID string, organizer bool) string {
	link := strings.TrimRight(baseURL, "/") + "/s/" + url.PathEscape(potID)
	if organizer {
		link += "?org=1"
	}
	return link
}

// FormatAmount prints whole amounts without decimals
func FormatAmount(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// ShareMessage is the text handed to a share sheet, messaging deep link or
// clipboard.
func ShareMessage(pot models.Pot, summary models.PotSummary, link string, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", pot.Title)
	fmt.Fprintf(&b, "Total: %s • %d seats • %s each\n",
		FormatAmount(pot.Total), pot.SeatCount, FormatAmount(summary.Share))
	if !pot.EventAt.IsZero() {
		fmt.Fprintf(&b, "Meeting: %s\n", pot.EventAt.In(loc).Format("Mon 02 Jan 2006 15:04"))
	}
	if pot.BankName != "" || pot.IBAN != "" {
		b.WriteString("Transfer to:")
		if pot.BankName != "" {
			fmt.Fprintf(&b, " %s", pot.BankName)
		}
		if pot.IBAN != "" {
			fmt.Fprintf(&b, " %s", pot.IBAN)
		}
		b.WriteString("\n")
	}
	b.WriteString("Write your name and press confirm after transferring 👇\n")
	b.WriteString(link)
	return b.String()
}
