package app

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_GenerateAndParse(t *testing.T) {
	cfg := TokenConfig{
		SecretKey: "user-secret",
		Expiry:    24 * time.Hour,
		Issuer:    "user-issuer",
	}
	tm := NewTokenManager(cfg)

	token, err := tm.Generate(1001, "testuser", "127.0.0.1")
	require.NoError(t, err)

	user, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), user.UID)
	assert.Equal(t, "testuser", user.Nickname)
	assert.Equal(t, "127.0.0.1", user.IP)
	assert.Equal(t, cfg.Issuer, user.Issuer)
	assert.NoError(t, tm.Validate(token))

	// 过期
	expiredCfg := cfg
	expiredCfg.Expiry = -1 * time.Second
	expired, err := NewTokenManager(expiredCfg).Generate(1001, "testuser", "127.0.0.1")
	require.NoError(t, err)
	_, err = tm.Parse(expired)
	assert.Error(t, err)

	// 错误的密钥
	wrongCfg := cfg
	wrongCfg.SecretKey = "wrong-user-secret"
	wrong, _ := NewTokenManager(wrongCfg).Generate(1001, "testuser", "127.0.0.1")
	assert.Error(t, tm.Validate(wrong))

	// 篡改
	assert.Error(t, tm.Validate(token+"xyz"))
}

func TestTokenManager_RejectsZeroUID(t *testing.T) {
	tm := NewTokenManager(TokenConfig{SecretKey: "s"})
	token, err := tm.Generate(0, "nobody", "")
	require.NoError(t, err)

	_, err = tm.Parse(token)
	assert.Error(t, err)
}

func TestGetUID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Zero(t, GetUID(c))

	SetUser(c, &UserEntity{UID: 9, IP: "10.0.0.1"})
	assert.Equal(t, int64(9), GetUID(c))
	assert.Equal(t, "10.0.0.1", GetIP(c))
}
