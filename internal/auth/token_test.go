package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/pokemon-battle-service/internal/auth"
	"github.com/maxviazov/pokemon-battle-service/internal/model"
)

const secret = "0123456789abcdef0123456789abcdef"

func newTokens(t *testing.T, now *time.Time) *auth.TokenService {
	t.Helper()
	svc, err := auth.NewTokenService(auth.TokenConfig{Secret: secret, Issuer: "pokemon-api", Audience: "pokemon-clients", Expiry: 60 * time.Minute})
	require.NoError(t, err)
	return svc.WithClock(func() time.Time { return *now })
}

var ash = model.User{ID: 7, Username: "ash", Email: "ash@pallet.town", Role: model.RoleTrainer}

func TestNewTokenService_Config(t *testing.T) {
	cases := []struct {
		name string
		cfg  auth.TokenConfig
	}{
		{"short secret", auth.TokenConfig{Secret: "short", Issuer: "i", Audience: "a", Expiry: time.Hour}},
		{"no issuer", auth.TokenConfig{Secret: secret, Audience: "a", Expiry: time.Hour}},
		{"no audience", auth.TokenConfig{Secret: secret, Issuer: "i", Expiry: time.Hour}},
		{"no expiry", auth.TokenConfig{Secret: secret, Issuer: "i", Audience: "a"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auth.NewTokenService(tc.cfg)
			assert.Error(t, err)
		})
	}
}

func TestTokenService_RoundTrip(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	svc := newTokens(t, &now)

	token, exp, err := svc.GenerateToken(ash)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, ash.ID, claims.UserID)
	assert.Equal(t, "ash", claims.Username)
	assert.Equal(t, "ash@pallet.town", claims.Email)
	assert.Equal(t, model.RoleTrainer, claims.Role)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, "pokemon-api", claims.Issuer)
	assert.NotEmpty(t, claims.ID)

	other, _, err := svc.GenerateToken(ash)
	require.NoError(t, err)
	otherClaims, err := svc.ValidateToken(other)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, otherClaims.ID, "every token gets its own jti")
}

func TestTokenService_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	svc := newTokens(t, &now)
	token, _, err := svc.GenerateToken(ash)
	require.NoError(t, err)

	now = now.Add(59 * time.Minute)
	_, err = svc.ValidateToken(token)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenService_Rejects(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	svc := newTokens(t, &now)
	good, _, err := svc.GenerateToken(ash)
	require.NoError(t, err)
	misty, _, err := svc.GenerateToken(model.User{ID: 8, Username: "misty", Role: model.RoleAdmin})
	require.NoError(t, err)
	// misty's claims carrying ash's signature
	g, m := strings.Split(good, "."), strings.Split(misty, ".")
	tampered := m[0] + "." + m[1] + "." + g[2]

	base := jwt.RegisteredClaims{
		Subject:   "7",
		Issuer:    "pokemon-api",
		Audience:  jwt.ClaimStrings{"pokemon-clients"},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	sign := func(method jwt.SigningMethod, key any, rc jwt.RegisteredClaims) string {
		s, err := jwt.NewWithClaims(method, auth.Claims{UserID: 7, Username: "ash", RegisteredClaims: rc}).SignedString(key)
		require.NoError(t, err)
		return s
	}

	wrongIssuer := base
	wrongIssuer.Issuer = "someone-else"
	wrongAudience := base
	wrongAudience.Audience = jwt.ClaimStrings{"other"}
	noExpiry := base
	noExpiry.ExpiresAt = nil

	cases := map[string]string{
		"garbage":        "not.a.token",
		"tampered":       tampered,
		"hs512":          sign(jwt.SigningMethodHS512, []byte(secret), base),
		"none":           sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, base),
		"wrong secret":   sign(jwt.SigningMethodHS256, []byte("ffffffffffffffffffffffffffffffff"), base),
		"wrong issuer":   sign(jwt.SigningMethodHS256, []byte(secret), wrongIssuer),
		"wrong audience": sign(jwt.SigningMethodHS256, []byte(secret), wrongAudience),
		"no expiry":      sign(jwt.SigningMethodHS256, []byte(secret), noExpiry),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestPasswordHasher(t *testing.T) {
	h := auth.NewPasswordHasher(4)
	hash, err := h.Hash("pikachu")
	require.NoError(t, err)
	assert.NotEqual(t, "pikachu", hash)
	assert.True(t, h.Verify(hash, "pikachu"))
	assert.False(t, h.Verify(hash, "raichu"))
	assert.False(t, h.Verify("not-a-bcrypt-hash", "pikachu"))

	again, err := h.Hash("pikachu")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "bcrypt salts every hash")
}
