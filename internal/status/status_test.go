package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSameValueMeansDifferentThingsPerFamily(t *testing.T) {
	assert.Equal(t, "DUPLICATE_ID", Register(2).String())
	assert.Equal(t, "ID_NOT_FOUND", Login(2).String())
	assert.Equal(t, "NO_CHANGE", ChangePassword(2).String())
	assert.Equal(t, "DUPLICATE_NAME", CreateRoom(2).String())
}

func TestOKOnlyForSuccess(t *testing.T) {
	assert.True(t, RegisterSuccess.OK())
	assert.False(t, RegisterDuplicateID.OK())
	assert.True(t, LogoutSuccess.OK())
	assert.False(t, LogoutUnauthenticated.OK())
	assert.True(t, CreateRoomSuccess.OK())
	assert.False(t, CreateRoomInvalidTimeWindow.OK())
}

func TestUnknownValueResolvesToInternal(t *testing.T) {
	c := Login(42)
	assert.Equal(t, "UNKNOWN", c.String())
	assert.Equal(t, KindInternal, c.Kind())
	assert.False(t, c.OK())
}

func TestEveryCodeHasAMessage(t *testing.T) {
	for _, f := range Families() {
		require.NotEmpty(t, f.Codes, "family %s has no codes", f.Family)
		seen := map[int]bool{}
		for _, c := range f.Codes {
			assert.NotEmpty(t, c.Message, "%s/%d", f.Family, c.Value)
			assert.NotEmpty(t, c.Name, "%s/%d", f.Family, c.Value)
			assert.False(t, seen[c.Value], "duplicate value %d in %s", c.Value, f.Family)
			seen[c.Value] = true
		}
	}
}

func TestFamiliesAreSortedByValue(t *testing.T) {
	for _, f := range Families() {
		for i := 1; i < len(f.Codes); i++ {
			assert.Less(t, f.Codes[i-1].Value, f.Codes[i].Value)
		}
	}
}

func TestLookup(t *testing.T) {
	info, ok := Lookup(FamilyCreateRoom, 9)
	require.True(t, ok)
	assert.Equal(t, "INVALID_TIME_WINDOW", info.Name)
	assert.Equal(t, KindInput, info.Kind)

	_, ok = Lookup(FamilyLogin, 4)
	assert.False(t, ok)

	_, ok = Lookup(Family("nope"), 1)
	assert.False(t, ok)
}

func TestKinds(t *testing.T) {
	assert.Equal(t, KindConflict, RegisterDuplicateID.Kind())
	assert.Equal(t, KindAuth, LoginWrongPassword.Kind())
	assert.Equal(t, KindNotFound, CreateRoomTopicNotFound.Kind())
	assert.Equal(t, KindStore, ChangePasswordDBError.Kind())
	assert.Equal(t, KindInput, DeletePlayerMissingInput.Kind())
}
