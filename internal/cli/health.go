package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/topicrooms/internal/api/response"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Message

			if err := client.Get("/health", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newStatusCodesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status-codes",
		Short: "List every operation's status codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.StatusFamily

			if err := client.Get("/status-codes", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
