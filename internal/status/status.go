// Package status holds the outcome codes of every account and room
// operation. Each operation family has its own closed enum: the same integer
// means different things in different families, and the types keep them from
// being mixed up.
package status

import "sort"

// Kind classifies an outcome for the transport layer
type Kind string

const (
	KindSuccess  Kind = "success"
	KindInput    Kind = "input"     // missing or malformed fields
	KindConflict Kind = "conflict"  // duplicate id or name
	KindNotFound Kind = "not_found" // unknown id, topic or player reference
	KindAuth     Kind = "auth"      // bad credentials or missing session
	KindStore    Kind = "store"     // persistence failure
	KindInternal Kind = "internal"  // unexpected failure
)

// Family names an operation family
type Family string

const (
	FamilyRegister       Family = "register"
	FamilyLogin          Family = "login"
	FamilyLogout         Family = "logout"
	FamilyChangePassword Family = "change_password"
	FamilyDeletePlayer   Family = "delete_player"
	FamilyCreateRoom     Family = "create_room"
)

// Code is implemented by every family enum
type Code interface {
	Family() Family
	Value() int
	String() string
	Message() string
	Kind() Kind
	OK() bool
}

type entry struct {
	name    string
	message string
	kind    Kind
}

type table[C ~int] map[C]entry

var unknownEntry = entry{name: "UNKNOWN", message: "unknown status", kind: KindInternal}

func (t table[C]) get(c C) entry {
	if e, ok := t[c]; ok {
		return e
	}
	return unknownEntry
}

func (t table[C]) describe(family Family) FamilyInfo {
	codes := make([]CodeInfo, 0, len(t))
	for c, e := range t {
		codes = append(codes, CodeInfo{Value: int(c), Name: e.name, Message: e.message, Kind: e.kind})
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i].Value < codes[j].Value })
	return FamilyInfo{Family: family, Codes: codes}
}

// Register outcomes

type Register int

const (
	RegisterSuccess               Register = 1
	RegisterDuplicateID           Register = 2
	RegisterInvalidIDFormat       Register = 3
	RegisterInvalidPasswordFormat Register = 4
	RegisterMissingInput          Register = 6
	RegisterServerError           Register = 8
)

var registerTable = table[Register]{
	RegisterSuccess:               {"SUCCESS", "registration complete", KindSuccess},
	RegisterDuplicateID:           {"DUPLICATE_ID", "player id is already taken", KindConflict},
	RegisterInvalidIDFormat:       {"INVALID_ID_FORMAT", "player id format is invalid", KindInput},
	RegisterInvalidPasswordFormat: {"INVALID_PASSWORD_FORMAT", "password format is invalid", KindInput},
	RegisterMissingInput:          {"MISSING_INPUT", "player id and password are required", KindInput},
	RegisterServerError:           {"SERVER_ERROR", "server error", KindInternal},
}

func (c Register) Family() Family  { return FamilyRegister }
func (c Register) Value() int      { return int(c) }
func (c Register) String() string  { return registerTable.get(c).name }
func (c Register) Message() string { return registerTable.get(c).message }
func (c Register) Kind() Kind      { return registerTable.get(c).kind }
func (c Register) OK() bool        { return c == RegisterSuccess }

// Login outcomes

type Login int

const (
	LoginSuccess         Login = 1
	LoginIDNotFound      Login = 2
	LoginInvalidIDFormat Login = 3
	LoginWrongPassword   Login = 5
	LoginMissingInput    Login = 6
	LoginServerError     Login = 8
)

var loginTable = table[Login]{
	LoginSuccess:         {"SUCCESS", "login successful", KindSuccess},
	LoginIDNotFound:      {"ID_NOT_FOUND", "player id does not exist", KindNotFound},
	LoginInvalidIDFormat: {"INVALID_ID_FORMAT", "player id format is invalid", KindInput},
	LoginWrongPassword:   {"WRONG_PASSWORD", "password is incorrect", KindAuth},
	LoginMissingInput:    {"MISSING_INPUT", "player id and password are required", KindInput},
	LoginServerError:     {"SERVER_ERROR", "server error", KindInternal},
}

func (c Login) Family() Family  { return FamilyLogin }
func (c Login) Value() int      { return int(c) }
func (c Login) String() string  { return loginTable.get(c).name }
func (c Login) Message() string { return loginTable.get(c).message }
func (c Login) Kind() Kind      { return loginTable.get(c).kind }
func (c Login) OK() bool        { return c == LoginSuccess }

// Logout outcomes

type Logout int

const (
	LogoutUnauthenticated Logout = 0
	LogoutSuccess         Logout = 1
	LogoutServerError     Logout = 8
)

var logoutTable = table[Logout]{
	LogoutUnauthenticated: {"UNAUTHENTICATED", "you must be logged in", KindAuth},
	LogoutSuccess:         {"SUCCESS", "logged out", KindSuccess},
	LogoutServerError:     {"SERVER_ERROR", "server error", KindInternal},
}

func (c Logout) Family() Family  { return FamilyLogout }
func (c Logout) Value() int      { return int(c) }
func (c Logout) String() string  { return logoutTable.get(c).name }
func (c Logout) Message() string { return logoutTable.get(c).message }
func (c Logout) Kind() Kind      { return logoutTable.get(c).kind }
func (c Logout) OK() bool        { return c == LogoutSuccess }

// ChangePassword outcomes

type ChangePassword int

const (
	ChangePasswordUnauthenticated  ChangePassword = 0
	ChangePasswordSuccess          ChangePassword = 1
	ChangePasswordNoChange         ChangePassword = 2
	ChangePasswordInvalidNewFormat ChangePassword = 3
	ChangePasswordWrongOldPassword ChangePassword = 4
	ChangePasswordMissingInput     ChangePassword = 6
	ChangePasswordDBError          ChangePassword = 7
	ChangePasswordServerError      ChangePassword = 8
)

var changePasswordTable = table[ChangePassword]{
	ChangePasswordUnauthenticated:  {"UNAUTHENTICATED", "you must be logged in as this player", KindAuth},
	ChangePasswordSuccess:          {"SUCCESS", "password changed", KindSuccess},
	ChangePasswordNoChange:         {"NO_CHANGE", "new password is the same as the old password", KindInput},
	ChangePasswordInvalidNewFormat: {"INVALID_NEW_FORMAT", "new password format is invalid", KindInput},
	ChangePasswordWrongOldPassword: {"WRONG_OLD_PASSWORD", "old password is incorrect", KindAuth},
	ChangePasswordMissingInput:     {"MISSING_INPUT", "player id, old password and new password are required", KindInput},
	ChangePasswordDBError:          {"DB_ERROR", "database error", KindStore},
	ChangePasswordServerError:      {"SERVER_ERROR", "server error", KindInternal},
}

func (c ChangePassword) Family() Family  { return FamilyChangePassword }
func (c ChangePassword) Value() int      { return int(c) }
func (c ChangePassword) String() string  { return changePasswordTable.get(c).name }
func (c ChangePassword) Message() string { return changePasswordTable.get(c).message }
func (c ChangePassword) Kind() Kind      { return changePasswordTable.get(c).kind }
func (c ChangePassword) OK() bool        { return c == ChangePasswordSuccess }

// DeletePlayer outcomes

type DeletePlayer int

const (
	DeletePlayerUnauthenticated DeletePlayer = 0
	DeletePlayerSuccess         DeletePlayer = 1
	DeletePlayerIDNotFound      DeletePlayer = 2
	DeletePlayerInvalidIDFormat DeletePlayer = 3
	DeletePlayerWrongPassword   DeletePlayer = 5
	DeletePlayerMissingInput    DeletePlayer = 6
	DeletePlayerServerError     DeletePlayer = 8
)

var deletePlayerTable = table[DeletePlayer]{
	DeletePlayerUnauthenticated: {"UNAUTHENTICATED", "you must be logged in as this player", KindAuth},
	DeletePlayerSuccess:         {"SUCCESS", "player deleted", KindSuccess},
	DeletePlayerIDNotFound:      {"ID_NOT_FOUND", "player id does not exist", KindNotFound},
	DeletePlayerInvalidIDFormat: {"INVALID_ID_FORMAT", "player id format is invalid", KindInput},
	DeletePlayerWrongPassword:   {"WRONG_PASSWORD", "password is incorrect", KindAuth},
	DeletePlayerMissingInput:    {"MISSING_INPUT", "player id and password are required", KindInput},
	DeletePlayerServerError:     {"SERVER_ERROR", "server error", KindInternal},
}

func (c DeletePlayer) Family() Family  { return FamilyDeletePlayer }
func (c DeletePlayer) Value() int      { return int(c) }
func (c DeletePlayer) String() string  { return deletePlayerTable.get(c).name }
func (c DeletePlayer) Message() string { return deletePlayerTable.get(c).message }
func (c DeletePlayer) Kind() Kind      { return deletePlayerTable.get(c).kind }
func (c DeletePlayer) OK() bool        { return c == DeletePlayerSuccess }

// CreateRoom outcomes

type CreateRoom int

const (
	CreateRoomSuccess           CreateRoom = 1
	CreateRoomDuplicateName     CreateRoom = 2
	CreateRoomPlayerNotFound    CreateRoom = 3
	CreateRoomTopicNotFound     CreateRoom = 4
	CreateRoomNameTooLong       CreateRoom = 5
	CreateRoomMissingInput      CreateRoom = 6
	CreateRoomDBError           CreateRoom = 7
	CreateRoomServerError       CreateRoom = 8
	CreateRoomInvalidTimeWindow CreateRoom = 9
)

var createRoomTable = table[CreateRoom]{
	CreateRoomSuccess:           {"SUCCESS", "room created", KindSuccess},
	CreateRoomDuplicateName:     {"DUPLICATE_NAME", "room name is already in use", KindConflict},
	CreateRoomPlayerNotFound:    {"PLAYER_NOT_FOUND", "player does not exist", KindNotFound},
	CreateRoomTopicNotFound:     {"TOPIC_NOT_FOUND", "topic does not exist", KindNotFound},
	CreateRoomNameTooLong:       {"NAME_TOO_LONG", "room name is too long", KindInput},
	CreateRoomMissingInput:      {"MISSING_INPUT", "room name, topic, player, start time and end time are required", KindInput},
	CreateRoomDBError:           {"DB_ERROR", "database error", KindStore},
	CreateRoomServerError:       {"SERVER_ERROR", "server error", KindInternal},
	CreateRoomInvalidTimeWindow: {"INVALID_TIME_WINDOW", "start time must be before end time", KindInput},
}

func (c CreateRoom) Family() Family  { return FamilyCreateRoom }
func (c CreateRoom) Value() int      { return int(c) }
func (c CreateRoom) String() string  { return createRoomTable.get(c).name }
func (c CreateRoom) Message() string { return createRoomTable.get(c).message }
func (c CreateRoom) Kind() Kind      { return createRoomTable.get(c).kind }
func (c CreateRoom) OK() bool        { return c == CreateRoomSuccess }
