package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"ffridge/internal/app"
	"ffridge/internal/core/expiry"
	"ffridge/internal/core/inventory"

	"github.com/spf13/cobra"
)

// endOfDay 當天最後一毫秒，讓到期當天仍顯示為「今天到期」
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// parseExpiry 解析 --expires（YYYY-MM-DD）或 --expires-in（天數）
func parseExpiry(date string, inDays int, loc *time.Location, now time.Time) (*int64, error) {
	switch {
	case date != "":
		t, err := time.ParseInLocation("2006-01-02", date, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid --expires %q, want YYYY-MM-DD", date)
		}
		ms := endOfDay(t).UnixMilli()
		return &ms, nil
	case inDays >= 0:
		ms := endOfDay(now.In(loc).AddDate(0, 0, inDays)).UnixMilli()
		return &ms, nil
	default:
		return nil, nil
	}
}

func addCmd(opts *options) *cobra.Command {
	var (
		ing      inventory.Ingredient
		category string
		expires  string
		inDays   int
	)

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add an ingredient",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				loc, err := a.Config.Expiry.Location()
				if err != nil {
					return err
				}
				ing.Name = strings.Join(args, " ")
				ing.Category = inventory.Category(category)
				if ing.ExpiryDate, err = parseExpiry(expires, inDays, loc, time.Now()); err != nil {
					return err
				}
				if err := a.Inventory.Add(cmd.Context(), &ing); err != nil {
					return err
				}

				st := a.Inventory.Classify(ing)
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s (%s) - %s\n", ing.Category.Icon(), ing.Name, short(ing.ID), st.Label())
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&ing.Quantity, "qty", "q", "", "quantity")
	cmd.Flags().StringVarP(&ing.Unit, "unit", "u", "", "unit (pcs, kg, L, ...)")
	cmd.Flags().StringVarP(&category, "category", "c", string(inventory.Other), "category")
	cmd.Flags().StringVar(&expires, "expires", "", "expiry date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&inDays, "expires-in", -1, "expires in N days")
	cmd.Flags().StringVar(&ing.Notes, "notes", "", "notes")
	return cmd
}

func listCmd(opts *options) *cobra.Command {
	var f inventory.Filter
	var sort string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ingredients with their expiry status",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := inventory.ParseSortOption(sort)
			if err != nil {
				return err
			}
			f.Sort = s
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				ov, err := a.Inventory.Overview(cmd.Context(), f)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				printEntries(w, ov.Items)
				fmt.Fprintf(w, "\n%d items, %d expiring soon, %d expired\n", ov.Total, ov.Counts.ExpiringSoon, ov.Counts.Expired)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&f.Category, "category", "c", "", "filter by category")
	cmd.Flags().StringVarP(&f.Search, "search", "s", "", "search name or category")
	cmd.Flags().StringVar(&sort, "sort", "", "NAME_ASC, EXPIRY_ASC, QUANTITY_DESC, ... (default DATE_ADDED_DESC)")
	return cmd
}

func expiringCmd(opts *options) *cobra.Command {
	var expired bool

	cmd := &cobra.Command{
		Use:   "expiring",
		Short: "Show ingredients expiring soon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				var (
					items []inventory.Entry
					err   error
				)
				if expired {
					items, err = a.Inventory.Expired(cmd.Context())
				} else {
					items, err = a.Inventory.Expiring(cmd.Context())
				}
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to worry about.")
					return nil
				}
				printEntries(cmd.OutOrStdout(), items)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&expired, "expired", false, "show already expired ingredients instead")
	return cmd
}

func cleanupCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired ingredients",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				n, err := a.Inventory.CleanupExpired(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired ingredients\n", n)
				return nil
			})
		},
	}
}

func statsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show inventory and recipe counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				s, err := a.Inventory.Stats(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintf(w, "Ingredients\t%d\n", s.TotalIngredients)
				fmt.Fprintf(w, "Expired\t%d\n", s.ExpiredIngredients)
				fmt.Fprintf(w, "Recipes\t%d\n", s.TotalRecipes)
				fmt.Fprintf(w, "Favorites\t%d\n", s.FavoriteRecipes)
				return w.Flush()
			})
		},
	}
}

func checkCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run the expiry check once and print alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				alerts, err := a.Watcher(nil).Check(cmd.Context())
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if len(alerts) == 0 {
					fmt.Fprintln(w, "No expiring ingredients.")
					return nil
				}
				for _, al := range alerts {
					fmt.Fprintf(w, "[%s] %s: %s\n", al.Status.Badge().Severity, al.Item.Name, al.Status.Label())
				}
				return nil
			})
		},
	}
}

func printEntries(out io.Writer, items []inventory.Entry) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tQTY\tCATEGORY\tSTATUS")
	for _, e := range items {
		qty := strings.TrimSpace(e.Quantity + " " + e.Unit)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t%s%s\n",
			short(e.ID), e.Name, qty, e.Category.Icon(), e.Category, marker(e.Badge.Severity), e.Badge.Label)
	}
	_ = w.Flush()
}

func marker(s expiry.Severity) string {
	switch s {
	case expiry.SeverityCritical:
		return "!! "
	case expiry.SeverityWarning:
		return "!  "
	default:
		return ""
	}
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func removeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "remove [id or id prefix]",
		Short: "Remove an ingredient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				ctx := cmd.Context()
				items, err := a.Inventory.List(ctx, inventory.Filter{})
				if err != nil {
					return err
				}
				var matches []inventory.Ingredient
				for _, it := range items {
					if strings.HasPrefix(it.ID, args[0]) {
						matches = append(matches, it)
					}
				}
				switch len(matches) {
				case 0:
					return fmt.Errorf("no ingredient matches %q", args[0])
				case 1:
				default:
					return fmt.Errorf("%q matches %d ingredients, use a longer prefix", args[0], len(matches))
				}
				if err := a.Inventory.Delete(ctx, matches[0].ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", matches[0].Name)
				return nil
			})
		},
	}
}
