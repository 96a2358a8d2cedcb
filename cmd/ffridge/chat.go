package main

import (
	"fmt"
	"strings"
	"time"

	"ffridge/internal/app"
	"ffridge/internal/core/chat"

	"github.com/spf13/cobra"
)

func chatCmd(opts *options) *cobra.Command {
	var history, clearChat bool

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Ask Chef Bot a cooking question",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				ctx := cmd.Context()
				out := cmd.OutOrStdout()

				switch {
				case clearChat:
					if err := a.Chat.Clear(ctx); err != nil {
						return err
					}
					fmt.Fprintln(out, "Chat cleared.")
					return nil
				case history:
					msgs, err := a.Chat.History(ctx)
					if err != nil {
						return err
					}
					for _, m := range msgs {
						fmt.Fprintf(out, "%s %s: %s\n", time.UnixMilli(m.Timestamp).Format("01-02 15:04"), speaker(m.Role), m.Text)
					}
					return nil
				}

				if len(args) == 0 {
					return fmt.Errorf("message is required")
				}
				reply, err := a.Chat.SendMessage(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintln(out, reply.Text)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&history, "history", false, "print the conversation so far")
	cmd.Flags().BoolVar(&clearChat, "clear", false, "delete the conversation")
	return cmd
}

func speaker(r chat.Role) string {
	if r == chat.RoleModel {
		return "Chef Bot"
	}
	return "You"
}
