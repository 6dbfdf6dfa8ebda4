package cli

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/topicrooms/internal/api/response"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomListCmd())
	cmd.AddCommand(newRoomGetCmd())

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	var name, user, start string
	var topic int
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a room",
		RunE: func(cmd *cobra.Command, args []string) error {
			startTime := time.Now().UTC().Truncate(time.Second)
			if start != "" {
				parsed, err := time.Parse(time.RFC3339, start)
				if err != nil {
					return fmt.Errorf("--start must be RFC 3339: %w", err)
				}
				startTime = parsed
			}

			req := map[string]any{
				"roomName":  name,
				"topicId":   topic,
				"playerId":  user,
				"startTime": startTime.Format(time.RFC3339),
				"endTime":   startTime.Add(duration).Format(time.RFC3339),
			}
			var result response.CreateRoom

			if err := client.Post("/room/create", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Room name (required)")
	cmd.Flags().IntVar(&topic, "topic", 0, "Topic id (required)")
	cmd.Flags().StringVar(&user, "user", "", "Owning player id (required)")
	cmd.Flags().StringVar(&start, "start", "", "Start time, RFC 3339 (default: now)")
	cmd.Flags().DurationVar(&duration, "duration", time.Hour, "How long the room stays open")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("topic")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newRoomListCmd() *cobra.Command {
	var limit, topic int
	var cursor string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rooms one page at a time",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"limit": limit}
			if cursor != "" {
				req["cursorId"] = cursor
			}
			if cmd.Flags().Changed("topic") {
				req["topicId"] = topic
			}
			var result response.RoomPage

			if err := client.Post("/room/list", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Page size (default: server default)")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Room id to continue after")
	cmd.Flags().IntVar(&topic, "topic", 0, "Only rooms in this topic")

	return cmd
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <room-id>...",
		Short: "Fetch rooms by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Room

			path := "/room/ids?roomIds=" + url.QueryEscape(strings.Join(args, ","))
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
