package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"absensi-service/api"
	"absensi-service/internal/models"
	"absensi-service/pkg/response"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Authenticate checks a username/password pair. Unknown username and
// wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*api.User, error) {
	const op = "service.Authenticate"

	user, err := s.store.UserByUsername(ctx, normUsername(username))
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrUnauthorized)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("%s: %w", op, response.ErrUnauthorized)
	}

	return toAPIUser(user), nil
}

// UserByID loads one user's profile; the auth middleware calls this on
// every authenticated request.
func (s *Service) UserByID(ctx context.Context, id string) (*api.User, error) {
	const op = "service.UserByID"

	user, err := s.store.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toAPIUser(user), nil
}

// UpdateProfile lets a user change their own display name and password.
// A password change requires the current password to match.
func (s *Service) UpdateProfile(ctx context.Context, userID string, req *api.UpdateProfileRequest) (*api.User, error) {
	const op = "service.UpdateProfile"

	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if req.Name != "" {
		user.Name = strings.TrimSpace(req.Name)
	}

	if req.NewPassword != "" {
		if req.CurrentPassword == "" {
			return nil, fmt.Errorf("%s: %w", op, response.ErrBadRequest)
		}

		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
			return nil, fmt.Errorf("%s: %w", op, response.ErrWrongPassword)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toAPIUser(user), nil
}

func (s *Service) ListUsers(ctx context.Context) ([]api.User, error) {
	const op = "service.ListUsers"

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]api.User, len(users))
	for i := range users {
		out[i] = *toAPIUser(&users[i])
	}

	return out, nil
}

// CreateUser registers a new operator account. Anything but an explicit
// "superadmin" role request becomes a plain admin.
func (s *Service) CreateUser(ctx context.Context, req *api.CreateUserRequest) (*api.User, error) {
	const op = "service.CreateUser"

	role := models.ROLE_ADMIN
	if req.Role == string(models.ROLE_SUPERADMIN) {
		role = models.ROLE_SUPERADMIN
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := &models.AdminUser{
		ID:           uuid.NewString(),
		Username:     normUsername(req.Username),
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
		CreatedAt:    s.now(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, response.ErrUserExists) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrUserExists)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toAPIUser(user), nil
}

// DeleteUser removes an account. Superadmin accounts are undeletable and
// nobody deletes themselves; both are precondition checks here, not
// storage-level rules.
func (s *Service) DeleteUser(ctx context.Context, actorID, targetID string) error {
	const op = "service.DeleteUser"

	target, err := s.store.UserByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if target.Role == models.ROLE_SUPERADMIN {
		return fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}
	if target.ID == actorID {
		return fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	if err := s.store.DeleteUser(ctx, targetID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SeedSuperadmin creates the bootstrap superadmin once, if none exists.
// A deployment always has at least one superadmin after boot.
func (s *Service) SeedSuperadmin(ctx context.Context, username, password, name string) (created bool, err error) {
	const op = "service.SeedSuperadmin"

	exists, err := s.store.HasSuperadmin(ctx)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		return false, nil
	}

	if password == "" {
		return false, fmt.Errorf("%s: seed password is empty", op)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	user := &models.AdminUser{
		ID:           uuid.NewString(),
		Username:     normUsername(username),
		PasswordHash: string(hash),
		Name:         name,
		Role:         models.ROLE_SUPERADMIN,
		CreatedAt:    s.now(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return true, nil
}

func normUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
