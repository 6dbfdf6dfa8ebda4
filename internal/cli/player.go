package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/topicrooms/internal/api/response"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player account commands",
	}

	cmd.AddCommand(newPlayerRegisterCmd())
	cmd.AddCommand(newPlayerLoginCmd())
	cmd.AddCommand(newPlayerLogoutCmd())
	cmd.AddCommand(newPlayerChangePasswordCmd())
	cmd.AddCommand(newPlayerDeleteCmd())
	cmd.AddCommand(newPlayerMeCmd())

	return cmd
}

func newPlayerRegisterCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new player account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"playerId": user,
				"password": pass,
			}
			var result response.Message

			if err := client.Post("/player/register", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Player id (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newPlayerLoginCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login and save the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"playerId": user,
				"password": pass,
			}
			var result response.Login

			if err := client.Post("/player/login", req, &result); err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(result.SessionToken); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Player id (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newPlayerLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session and forget the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Message

			if err := client.Post("/player/logout", nil, &result); err != nil {
				return err
			}

			if err := cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newPlayerChangePasswordCmd() *cobra.Command {
	var user, oldPass, newPass string

	cmd := &cobra.Command{
		Use:   "change-password",
		Short: "Change the logged-in player's password",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"playerId":    user,
				"oldPassword": oldPass,
				"newPassword": newPass,
			}
			var result response.Message

			if err := client.Patch("/player/change-password", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Player id (required)")
	cmd.Flags().StringVar(&oldPass, "old", "", "Current password (required)")
	cmd.Flags().StringVar(&newPass, "new", "", "New password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("old")
	_ = cmd.MarkFlagRequired("new")

	return cmd
}

func newPlayerDeleteCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the logged-in player's account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"playerId": user,
				"password": pass,
			}
			var result response.Message

			if err := client.Delete("/player/delete", req, &result); err != nil {
				return err
			}

			if err := cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Player id (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newPlayerMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show current player info",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Me

			if err := client.Get("/player/me", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
