package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gatta/internal/client"
	"gatta/internal/logger"
	"gatta/internal/models"
	"gatta/internal/potsync"
	"gatta/internal/potview"

	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a pot and keep its organizer token",
	Args:  cobra.NoArgs,
	RunE:  runCreate,
}

var showCmd = &cobra.Command{
	Use:   "show <pot-id>",
	Short: "Show a pot's seats and totals",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var payCmd = &cobra.Command{
	Use:   "pay <pot-id> <name>",
	Short: "Confirm that <name> has transferred their share",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runPay,
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <pot-id> <seat-id>",
	Short: "Flip a member's paid flag",
	Args:  cobra.ExactArgs(2),
	RunE:  runToggle,
}

var addCmd = &cobra.Command{
	Use:   "add <pot-id> <name>",
	Short: "Add an unpaid member (organizer only)",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runAdd,
}

var bankCmd = &cobra.Command{
	Use:   "bank <pot-id>",
	Short: "Set the transfer details (organizer only)",
	Args:  cobra.ExactArgs(1),
	RunE:  runBank,
}

var shareCmd = &cobra.Command{
	Use:   "share <pot-id>",
	Short: "Print the message to send to members",
	Args:  cobra.ExactArgs(1),
	RunE:  runShare,
}

var watchCmd = &cobra.Command{
	Use:   "watch <pot-id>",
	Short: "Follow a pot live with a running countdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func runCreate(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	total, _ := cmd.Flags().GetFloat64("total")
	seatCount, _ := cmd.Flags().GetInt("seats")
	at, _ := cmd.Flags().GetString("at")
	bank, _ := cmd.Flags().GetString("bank")
	iban, _ := cmd.Flags().GetString("iban")

	eventAt, err := parseMeetingTime(at, time.Local)
	if err != nil {
		return err
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(cmd)
	defer cancel()

	resp, err := c.CreatePot(ctx, models.CreatePotRequest{
		Title:     title,
		Total:     total,
		SeatCount: float64(seatCount),
		EventAt:   eventAt,
		BankName:  bank,
		IBAN:      iban,
	})
	if err != nil {
		return fmt.Errorf("failed to create pot: %w", err)
	}

	printf(cmd, "Pot created: %s\n", resp.ID)
	printf(cmd, "Share link:     %s\n", resp.Link)
	printf(cmd, "Organizer link: %s\n", resp.OrganizerLink)
	printf(cmd, "Organizer token saved to %s\n", tokenPath)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(cmd)
	defer cancel()

	view, err := c.GetPot(ctx, args[0])
	if err != nil {
		return potError(err)
	}
	renderPot(cmd.OutOrStdout(), view.Pot, view.Summary, c.IsOrganizer(view.Pot.ID))
	return nil
}

func runPay(cmd *cobra.Command, args []string) error {
	name := strings.Join(args[1:], " ")
	return mutate(cmd, args[0], func(ctx context.Context, s *potsync.Session) (potsync.Result, error) {
		return s.ConfirmPayment(ctx, name)
	})
}

func runToggle(cmd *cobra.Command, args []string) error {
	return mutate(cmd, args[0], func(ctx context.Context, s *potsync.Session) (potsync.Result, error) {
		return s.TogglePaid(ctx, args[1])
	})
}

func runAdd(cmd *cobra.Command, args []string) error {
	name := strings.Join(args[1:], " ")
	return mutate(cmd, args[0], func(ctx context.Context, s *potsync.Session) (potsync.Result, error) {
		return s.AddMember(ctx, name)
	})
}

func runBank(cmd *cobra.Command, args []string) error {
	bank, _ := cmd.Flags().GetString("bank")
	iban, _ := cmd.Flags().GetString("iban")

	c, err := newClient()
	if err != nil {
		return err
	}
	if !c.IsOrganizer(args[0]) {
		return errors.New("only the organizer can change bank details: no organizer token for this pot")
	}
	ctx, cancel := requestContext(cmd)
	defer cancel()

	view, err := c.UpdateBank(ctx, args[0], bank, iban)
	if err != nil {
		return potError(err)
	}
	printf(cmd, "Transfer details updated: %s %s\n", view.Pot.BankName, view.Pot.IBAN)
	return nil
}

func runShare(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(cmd)
	defer cancel()

	msg, err := c.ShareMessage(ctx, args[0])
	if err != nil {
		return potError(err)
	}
	printf(cmd, "%s\n", msg.Text)
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	loadCtx, cancel := requestContext(cmd)
	view, err := c.GetPot(loadCtx, args[0])
	cancel()
	if err != nil {
		return potError(err)
	}

	organizer := c.IsOrganizer(view.Pot.ID)
	changed := make(chan struct{}, 1)
	session := potsync.NewSession(view.Pot, c,
		potsync.WithLogger(logger.Get()),
		potsync.OnChange(func(models.Pot) {
			select {
			case changed <- struct{}{}:
			default:
			}
		}),
	)

	events, err := c.Subscribe(ctx, view.Pot.ID)
	if err != nil {
		return potError(err)
	}
	listenErr := make(chan error, 1)
	go func() { listenErr <- session.Listen(ctx, events) }()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	out := cmd.OutOrStdout()
	draw := func() {
		pot := session.Snapshot()
		fmt.Fprint(out, "\033[H\033[2J")
		renderPot(out, pot, potview.Summarize(pot, time.Now()), organizer)
	}
	draw()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-listenErr:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			if ctx.Err() == nil {
				return errors.New("realtime stream closed by the server")
			}
			return nil
		case <-changed:
			draw()
		case <-ticker.C:
			draw()
		}
	}
}

type mutation func(ctx context.Context, s *potsync.Session) (potsync.Result, error)

// mutate loads the pot into a session, applies fn optimistically and prints
// the outcome along with the refreshed pot.
func mutate(cmd *cobra.Command, potID string, fn mutation) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(cmd)
	defer cancel()

	view, err := c.GetPot(ctx, potID)
	if err != nil {
		return potError(err)
	}

	opts := []potsync.Option{potsync.WithLogger(logger.Get())}
	organizer := c.IsOrganizer(view.Pot.ID)
	if organizer {
		opts = append(opts, potsync.AsOrganizer())
	}
	session := potsync.NewSession(view.Pot, c, opts...)

	result, err := fn(ctx, session)
	if err != nil {
		return err
	}

	switch result.Kind {
	case potsync.RolledBack:
		return fmt.Errorf("not saved: %s", result.Reason)
	case potsync.Unchanged:
		printf(cmd, "Nothing to change.\n")
	case potsync.Applied:
		state := "unpaid"
		if result.Seat.Paid {
			state = "paid"
		}
		printf(cmd, "%s is now %s.\n", result.Seat.Name, state)
	}

	pot := session.Snapshot()
	renderPot(cmd.OutOrStdout(), pot, potview.Summarize(pot, time.Now()), organizer)
	return nil
}

func potError(err error) error {
	if client.StatusOf(err) == 404 {
		return errors.New("this link is unavailable: the pot does not exist")
	}
	return err
}
