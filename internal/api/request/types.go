package request

// RegisterRequest is the request body for POST /player/register
type RegisterRequest struct {
	PlayerID string `json:"playerId"`
	Password string `json:"password"`
}

// LoginRequest is the request body for POST /player/login
type LoginRequest struct {
	PlayerID string `json:"playerId"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the request body for PATCH /player/change-password
type ChangePasswordRequest struct {
	PlayerID    string `json:"playerId"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// DeletePlayerRequest is the request body for DELETE /player/delete
type DeletePlayerRequest struct {
	PlayerID string `json:"playerId"`
	Password string `json:"password"`
}

// CreateRoomRequest is the request body for POST /room/create.
// Times are RFC 3339.
type CreateRoomRequest struct {
	RoomName  string `json:"roomName"`
	TopicID   int    `json:"topicId"`
	PlayerID  string `json:"playerId"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// ListRoomsRequest is the request body for POST /room/list
type ListRoomsRequest struct {
	Limit    int    `json:"limit"`
	CursorID string `json:"cursorId,omitempty"`
	TopicID  *int   `json:"topicId,omitempty"`
}

// RoomIDsRequest is the request body for POST /room/ids
type RoomIDsRequest struct {
	RoomIDs []string `json:"roomIds"`
}
