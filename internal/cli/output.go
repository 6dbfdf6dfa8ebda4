package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mcoot/topicrooms/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w (stdout if nil)
func NewOutput(format string, w io.Writer) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Message:
		fmt.Fprintln(o.w, v.Message)
	case response.Login:
		o.printLogin(v)
	case response.Me:
		o.printPlayer(v.Player)
		fmt.Fprintf(o.w, "Session expires: %s\n", v.ExpiresAt.Format(time.RFC3339))
	case []response.Topic:
		o.printTopics(v)
	case []response.TopicRoomCount:
		o.printRoomCounts(v)
	case response.CreateRoom:
		fmt.Fprintln(o.w, v.Message)
		o.printRoom(v.Room)
	case response.RoomPage:
		o.printRooms(v.Rooms)
		if v.NextCursor != "" {
			fmt.Fprintf(o.w, "Next cursor: %s\n", v.NextCursor)
		}
	case []response.Room:
		o.printRooms(v)
	case []response.StatusFamily:
		o.printStatusFamilies(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printPlayer(p response.Player) {
	fmt.Fprintf(o.w, "Player: %s\n", p.PlayerID)
	fmt.Fprintf(o.w, "Created: %s\n", p.CreatedAt.Format(time.RFC3339))
}

func (o *Output) printLogin(l response.Login) {
	fmt.Fprintln(o.w, l.Message)
	o.printPlayer(l.Player)
	fmt.Fprintf(o.w, "Token: %s\n", l.SessionToken)
	fmt.Fprintf(o.w, "Expires: %s\n", l.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printTopics(topics []response.Topic) {
	fmt.Fprintf(o.w, "Topics (%d):\n", len(topics))
	for _, t := range topics {
		fmt.Fprintf(o.w, "  %3d  %s\n", t.TopicID, t.Name)
	}
}

func (o *Output) printRoomCounts(counts []response.TopicRoomCount) {
	for _, c := range counts {
		fmt.Fprintf(o.w, "  %3d  %-20s %d active\n", c.TopicID, c.Name, c.RoomCount)
	}
}

func (o *Output) printRoom(r response.Room) {
	fmt.Fprintf(o.w, "Room: %s (%s)\n", r.RoomName, r.RoomID)
	fmt.Fprintf(o.w, "Topic: %d\n", r.TopicID)
	fmt.Fprintf(o.w, "Owner: %s\n", r.PlayerID)
	fmt.Fprintf(o.w, "Open: %s - %s\n", r.StartTime.Format(time.RFC3339), r.EndTime.Format(time.RFC3339))
}

func (o *Output) printRooms(rooms []response.Room) {
	fmt.Fprintf(o.w, "Rooms (%d):\n", len(rooms))
	for _, r := range rooms {
		fmt.Fprintf(o.w, "  - %s  %s [topic %d, owner %s, ends %s]\n",
			r.RoomID, r.RoomName, r.TopicID, r.PlayerID, r.EndTime.Format(time.RFC3339))
	}
}

func (o *Output) printStatusFamilies(families []response.StatusFamily) {
	for _, f := range families {
		fmt.Fprintf(o.w, "%s:\n", f.Operation)
		for _, c := range f.Codes {
			fmt.Fprintf(o.w, "  %d  %-24s %s\n", c.Code, c.Name, c.Message)
		}
	}
}
