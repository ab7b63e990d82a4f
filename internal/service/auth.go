package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/pokemon-battle-service/internal/auth"
	"github.com/maxviazov/pokemon-battle-service/internal/model"
	"github.com/maxviazov/pokemon-battle-service/internal/repository"
)

// TokenIssuer is the token half of the auth package as the service sees it.
type TokenIssuer interface {
	GenerateToken(u model.User) (string, time.Time, error)
	ValidateToken(token string) (*auth.Claims, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

type authService struct {
	users  repository.UserRepository
	tokens TokenIssuer
	hasher PasswordHasher
	now    func() time.Time
	delay  func(context.Context) error
	log    zerolog.Logger
}

func NewAuthService(users repository.UserRepository, tokens TokenIssuer, hasher PasswordHasher, logger zerolog.Logger, opts ...Option) AuthService {
	o := buildOptions(opts)
	l := logger.With().Str("module", "service").Str("component", "auth").Logger()
	return &authService{users: users, tokens: tokens, hasher: hasher, now: o.now, delay: o.loginDelay, log: l}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (model.AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	var ferrs []FieldError
	if len([]rune(in.Username)) < minUsernameLength {
		ferrs = append(ferrs, FieldError{Field: "username", Message: "must be at least 3 characters"})
	} else if len([]rune(in.Username)) > maxNameLength {
		ferrs = append(ferrs, FieldError{Field: "username", Message: "must be at most 100 characters"})
	}
	if len(in.Password) < minPasswordLength {
		ferrs = append(ferrs, FieldError{Field: "password", Message: "must be at least 6 characters"})
	}
	if in.Password != in.ConfirmPassword {
		ferrs = append(ferrs, FieldError{Field: "confirm_password", Message: "must match password"})
	}
	if !isValidEmail(in.Email) {
		ferrs = append(ferrs, FieldError{Field: "email", Message: "must be a valid email address"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Str("username", in.Username).Interface("field_errors", ferrs).Msg("registration validation failed")
		return model.AuthResult{}, err
	}

	if err := s.checkAvailable(ctx, in.Username, in.Email); err != nil {
		if TakenField(err) != "" {
			s.log.Warn().Str("username", in.Username).Str("field", TakenField(err)).Msg("registration rejected: already taken")
		}
		return model.AuthResult{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return model.AuthResult{}, err
	}
	u, err := s.users.Create(ctx, model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    s.now().UTC(),
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			// lost a race with a concurrent sign-up; name the field if it is visible now
			if taken := s.checkAvailable(ctx, in.Username, in.Email); TakenField(taken) != "" {
				err = taken
			}
			s.log.Warn().Str("username", in.Username).Str("field", TakenField(err)).Msg("registration rejected: already taken")
		}
		return model.AuthResult{}, err
	}
	s.log.Info().Int64("user_id", u.ID).Str("username", u.Username).Msg("user registered")
	return s.issue(u)
}

// checkAvailable looks up username then email. Create stays the authoritative uniqueness check.
func (s *authService) checkAvailable(ctx context.Context, username, email string) error {
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return &takenError{field: "username"}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return &takenError{field: "email"}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

func (s *authService) Login(ctx context.Context, username, password string) (model.AuthResult, error) {
	username = strings.TrimSpace(username)
	var ferrs []FieldError
	if username == "" {
		ferrs = append(ferrs, FieldError{Field: "username", Message: "must not be empty"})
	}
	if password == "" {
		ferrs = append(ferrs, FieldError{Field: "password", Message: "must not be empty"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return model.AuthResult{}, err
	}

	if err := s.delay(ctx); err != nil {
		return model.AuthResult{}, err
	}

	u, err := s.users.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.log.Warn().Str("username", username).Msg("login failed: unknown user")
		return model.AuthResult{}, ErrInvalidCredentials
	case err != nil:
		return model.AuthResult{}, err
	}
	if !u.IsActive || !s.hasher.Verify(u.PasswordHash, password) {
		s.log.Warn().Str("username", username).Bool("active", u.IsActive).Msg("login failed")
		return model.AuthResult{}, ErrInvalidCredentials
	}

	u, err = s.users.Update(ctx, u.ID, func(u *model.User) error {
		ts := s.now().UTC()
		u.LastLoginAt = &ts
		return nil
	})
	if err != nil {
		return model.AuthResult{}, err
	}
	s.log.Info().Int64("user_id", u.ID).Str("username", u.Username).Msg("user logged in")
	return s.issue(u)
}

// Refresh issues a fresh token for the user named by already validated claims.
func (s *authService) Refresh(ctx context.Context, claims *auth.Claims) (model.AuthResult, error) {
	if claims == nil {
		return model.AuthResult{}, auth.ErrInvalidToken
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil || !u.IsActive {
		return model.AuthResult{}, auth.ErrInvalidToken
	}
	return s.issue(u)
}

func (s *authService) ValidateToken(token string) (*auth.Claims, error) {
	return s.tokens.ValidateToken(strings.TrimSpace(token))
}

func (s *authService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	ferrs := checkID("user_id", userID)
	if len(newPassword) < minPasswordLength {
		ferrs = append(ferrs, FieldError{Field: "new_password", Message: "must be at least 6 characters"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !u.IsActive {
		return repository.ErrNotFound
	}
	if !s.hasher.Verify(u.PasswordHash, oldPassword) {
		return ErrInvalidCredentials
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if _, err := s.users.Update(ctx, userID, func(u *model.User) error {
		u.PasswordHash = hash
		return nil
	}); err != nil {
		return err
	}
	s.log.Info().Int64("user_id", userID).Msg("password changed")
	return nil
}

func (s *authService) UserExists(ctx context.Context, username string) (bool, error) {
	_, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *authService) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	if err := invalidID("id", id); err != nil {
		return model.User{}, err
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	return u.Public(), nil
}

func (s *authService) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return model.User{}, err
	}
	return u.Public(), nil
}

// ListUsers returns active users only.
func (s *authService) ListUsers(ctx context.Context) ([]model.User, error) {
	all, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.User, 0, len(all))
	for _, u := range all {
		if u.IsActive {
			out = append(out, u.Public())
		}
	}
	return out, nil
}

// UpdateUserRole reports false when the user is absent or inactive.
func (s *authService) UpdateUserRole(ctx context.Context, userID int64, role model.Role) (bool, error) {
	ferrs := checkID("user_id", userID)
	if !role.Valid() {
		ferrs = append(ferrs, FieldError{Field: "role", Message: fmt.Sprintf("must be one of %s|%s|%s", model.RoleUser, model.RoleTrainer, model.RoleAdmin)})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return false, err
	}
	errInactive := errors.New("inactive")
	_, err := s.users.Update(ctx, userID, func(u *model.User) error {
		if !u.IsActive {
			return errInactive
		}
		u.Role = role
		return nil
	})
	switch {
	case err == nil:
		s.log.Info().Int64("user_id", userID).Str("role", string(role)).Msg("user role updated")
		return true, nil
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, errInactive):
		return false, nil
	default:
		return false, err
	}
}

func (s *authService) issue(u model.User) (model.AuthResult, error) {
	token, exp, err := s.tokens.GenerateToken(u)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", u.ID).Msg("token generation failed")
		return model.AuthResult{}, err
	}
	return model.AuthResult{Token: token, ExpiresAt: exp, User: u.Public()}, nil
}
