package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/maxviazov/pokemon-battle-service/internal/auth"
	"github.com/maxviazov/pokemon-battle-service/internal/handler"
	"github.com/maxviazov/pokemon-battle-service/internal/middleware"
	"github.com/maxviazov/pokemon-battle-service/internal/model"
	"github.com/maxviazov/pokemon-battle-service/internal/repository/memory"
	"github.com/maxviazov/pokemon-battle-service/internal/service"
)

// stubPinger implements handler.Pinger for health endpoints.
type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

type testApp struct {
	router   *gin.Engine
	store    *memory.Store
	tokens   *auth.TokenService
	pokemon  service.PokemonService
	trainers service.TrainerService
	battles  service.BattleService
	auth     service.AuthService
	limiter  *middleware.RateLimiter
}

func newApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zerolog.New(io.Discard)

	store := memory.NewStore(logger)
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:   "0123456789abcdef0123456789abcdef",
		Issuer:   "pokemon-api",
		Audience: "pokemon-clients",
		Expiry:   time.Hour,
	})
	require.NoError(t, err)

	noDelay := service.WithLoginDelay(func(context.Context) error { return nil })
	a := &testApp{
		store:    store,
		tokens:   tokens,
		pokemon:  service.NewPokemonService(store.Pokemon, logger),
		trainers: service.NewTrainerService(store.Trainers, store.Pokemon, logger),
		battles:  service.NewBattleService(store.Battles, store.Trainers, store.Pokemon, logger),
		auth:     service.NewAuthService(store.Users, tokens, auth.NewPasswordHasher(bcrypt.MinCost), logger, noDelay),
		limiter:  middleware.NewRateLimiter(3, 3, logger),
	}
	a.router = handler.NewRouter(handler.RouterConfig{}, handler.Deps{
		Store:        store,
		Pokemon:      a.pokemon,
		Trainers:     a.trainers,
		Battles:      a.battles,
		Auth:         a.auth,
		Tokens:       tokens,
		LoginLimiter: a.limiter,
	}, logger)
	return a
}

// token signs a token for a synthetic user with the given role.
func (a *testApp) token(t *testing.T, role model.Role) string {
	t.Helper()
	tok, _, err := a.tokens.GenerateToken(model.User{ID: 99, Username: "tester", Email: "tester@example.com", Role: role})
	require.NoError(t, err)
	return tok
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.RemoteAddr = "192.0.2.1:1234"
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorBody struct {
	Error       string               `json:"error"`
	Message     string               `json:"message"`
	FieldErrors []service.FieldError `json:"field_errors"`
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}


func itoa(id int64) string { return strconv.FormatInt(id, 10) }
