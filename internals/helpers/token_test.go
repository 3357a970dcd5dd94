package helper_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helper "district_platform/internals/helpers"
)

func TestSignAndParseUserToken(t *testing.T) {
	token, err := helper.SignUserToken("test-secret", 42, "akola", "district", "Akola / अकोला")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := helper.ParseUserToken("test-secret", token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "akola", claims.Username)
	assert.Equal(t, "district", claims.Role)
	assert.Equal(t, "Akola / अकोला", claims.DistrictName)

	require.NotNil(t, claims.ExpiresAt)
	ttl := time.Until(claims.ExpiresAt.Time)
	assert.InDelta(t, float64(7*24*time.Hour), float64(ttl), float64(time.Minute))
}

func TestParseUserTokenWrongSecret(t *testing.T) {
	token, err := helper.SignUserToken("test-secret", 1, "boss", "admin", "")
	require.NoError(t, err)

	_, err = helper.ParseUserToken("other-secret", token)
	assert.Error(t, err)
}

func TestParseUserTokenGarbage(t *testing.T) {
	_, err := helper.ParseUserToken("test-secret", "not.a.token")
	assert.Error(t, err)
}
