package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dwikikusuma/cart-sync/internal/cartsync/app"
	"github.com/dwikikusuma/cart-sync/internal/cartsync/domain"
	orderdomain "github.com/dwikikusuma/cart-sync/internal/order/domain"
	"github.com/dwikikusuma/cart-sync/pkg/shutdown"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cart",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

var setCmd = &cobra.Command{
	Use:   "set <item-id> <quantity>",
	Short: "Set the quantity of a cart line",
	Args:  cobra.ExactArgs(2),
	RunE:  runSet,
}

var rmCmd = &cobra.Command{
	Use:   "rm <item-id>",
	Short: "Remove a cart line",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

var addCmd = &cobra.Command{
	Use:   "add <product-id> [quantity]",
	Short: "Add a product to the cart (online only)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runAdd,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every line from the cart",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order for the current cart",
	Args:  cobra.NoArgs,
	RunE:  runCheckout,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the cart loaded and print every change until interrupted",
	Long: `watch keeps the engine running so connectivity probing stays active.
Going offline and coming back are printed as they happen.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

// withSession opens a session, loads the cart, runs fn and prints the
// final view.
func withSession(cmd *cobra.Command, hooks app.Hooks, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := openSession(cmd, hooks)
	if err != nil {
		return err
	}
	s.start(ctx)

	runErr := fn(ctx, s)
	if err := s.close(); err != nil {
		s.log.Warn("close session failed", slog.Any("err", err))
	}

	printView(cmd.OutOrStdout(), s.engine.View())
	return runErr
}

func runShow(cmd *cobra.Command, args []string) error {
	return withSession(cmd, app.Hooks{}, func(ctx context.Context, s *session) error {
		return nil
	})
}

func runSet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "item id")
	if err != nil {
		return err
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("quantity must be an integer: %q", args[1])
	}

	return withSession(cmd, app.Hooks{}, func(ctx context.Context, s *session) error {
		return s.engine.RequestQuantity(ctx, id, qty)
	})
}

func runRemove(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "item id")
	if err != nil {
		return err
	}

	return withSession(cmd, app.Hooks{}, func(ctx context.Context, s *session) error {
		return s.engine.RemoveItem(ctx, id)
	})
}

func runAdd(cmd *cobra.Command, args []string) error {
	productID, err := parseID(args[0], "product id")
	if err != nil {
		return err
	}
	qty := 1
	if len(args) == 2 {
		if qty, err = strconv.Atoi(args[1]); err != nil || qty < 1 {
			return fmt.Errorf("quantity must be a positive integer: %q", args[1])
		}
	}

	return withSession(cmd, app.Hooks{}, func(ctx context.Context, s *session) error {
		_, err := s.engine.AddItem(ctx, productID, qty)
		return err
	})
}

func runClear(cmd *cobra.Command, args []string) error {
	confirm := func() bool {
		if assumeYes {
			return true
		}
		fmt.Fprint(cmd.OutOrStdout(), "Remove every item from the cart? [y/N] ")
		line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}

	return withSession(cmd, app.Hooks{}, func(ctx context.Context, s *session) error {
		return s.engine.Clear(ctx, confirm)
	})
}

func runCheckout(cmd *cobra.Command, args []string) error {
	hooks := app.Hooks{
		Navigate: func(o orderdomain.Order) {
			printOrder(cmd.OutOrStdout(), o)
		},
	}
	return withSession(cmd, hooks, func(ctx context.Context, s *session) error {
		_, err := s.engine.Checkout(ctx)
		return err
	})
}

func runWatch(cmd *cobra.Command, args []string) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := shutdown.WithSignals(parent)
	defer cancel()

	out := cmd.OutOrStdout()
	var (
		mu       sync.Mutex
		lastMode domain.Mode
	)
	hooks := app.Hooks{
		OnChange: func(v domain.View) {
			mu.Lock()
			defer mu.Unlock()
			if m := v.Mode(); m != lastMode {
				fmt.Fprintf(out, "-- %s\n", m)
				lastMode = m
			}
		},
	}

	s, err := openSession(cmd, hooks)
	if err != nil {
		return err
	}
	defer s.close()

	s.start(ctx)
	printView(out, s.engine.View())

	<-ctx.Done()
	if shutdown.Signalled(ctx) {
		s.log.Info("watch stopped", slog.String("cause", context.Cause(ctx).Error()))
	}
	return nil
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer: %q", what, s)
	}
	return id, nil
}
