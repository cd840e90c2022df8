package helpers

import (
	"sort"
	"testing"
	"time"

	"shindensen_client/schemas"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerHeaders(t *testing.T) {
	assert.Equal(t, map[string]string{"Authorization": "Bearer abc"}, BearerHeaders("abc"))
	assert.Empty(t, BearerHeaders(""))
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "", BearerToken("Basic abc"))
}

func TestJWTRoundTrip(t *testing.T) {
	secret := []byte("dev-secret")
	token, err := GenerateJWT(secret, 7, "ash", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(secret, token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "ash", claims.Username)
	assert.False(t, claims.Expired(time.Now()))

	inspected, err := InspectJWT(token)
	require.NoError(t, err)
	assert.Equal(t, claims, inspected)

	_, err = ParseJWT([]byte("other"), token)
	assert.Error(t, err)
}

func TestParseJWTExpired(t *testing.T) {
	secret := []byte("dev-secret")
	token, err := GenerateJWT(secret, 7, "ash", -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(secret, token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	claims, err := InspectJWT(token)
	require.NoError(t, err)
	assert.True(t, claims.Expired(time.Now()))
}

func TestInspectOpaqueToken(t *testing.T) {
	_, err := InspectJWT("opaque-token")
	assert.Error(t, err)
}

func TestObjectKeyIsContentAddressed(t *testing.T) {
	a := ObjectKey([]byte("hello"), "greeting.TXT")
	b := ObjectKey([]byte("hello"), "other.txt")
	c := ObjectKey([]byte("hello!"), "greeting.txt")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 32+len(".txt"))
	assert.Equal(t, ".txt", a[32:])
}

func TestFileTypeAndMime(t *testing.T) {
	assert.Equal(t, "image", FileType("image/png"))
	assert.Equal(t, "audio", FileType("audio/mpeg"))
	assert.Equal(t, "file", FileType("application/pdf"))
	assert.Equal(t, "image/png", DetectMimeType("cat.png", nil))
	assert.Equal(t, "text/plain; charset=utf-8", DetectMimeType("noext", []byte("plain words")))
}

func TestUserSnapshotCodec(t *testing.T) {
	users := []schemas.UserInfo{
		{ID: 1, Username: "ash"},
		{ID: 2, Username: "kai", DisplayName: schemas.StringPtr("Kai")},
	}
	fields, err := EncodeUsers(users)
	require.NoError(t, err)
	require.Len(t, fields, 2)

	raw := make(map[string]string, len(fields))
	for k, v := range fields {
		raw[k] = v.(string)
	}
	raw["3"] = "{broken"
	raw["4"] = `{"id":5,"username":"mismatch"}`

	got, skipped := DecodeUsers(raw)
	assert.Equal(t, 2, skipped)
	sort.Slice(got, func(i, j int) bool { return got[i].ID < got[j].ID })
	assert.Equal(t, users, got)
}
