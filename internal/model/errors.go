package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrPlayerExists   = errors.New("player already exists")

	// Topic errors
	ErrTopicNotFound = errors.New("topic not found")

	// Room errors
	ErrRoomNameTaken = errors.New("room name already in use")
	ErrInvalidCursor = errors.New("invalid room cursor")
)
