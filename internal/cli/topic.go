package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/topicrooms/internal/api/response"
)

func newTopicCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topic",
		Short: "Topic catalog commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List topics",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Topic

			if err := client.Get("/topic/list", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "room-count",
		Short: "Show active rooms per topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.TopicRoomCount

			if err := client.Get("/topic/room-count", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	})

	return cmd
}
