package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dbmis/internal/app/ds"
	"dbmis/internal/app/utils"

	"github.com/sirupsen/logrus"
)

// UserUpdate carries the admin-editable profile fields. Empty Role/Status keep the stored value.
type UserUpdate struct {
	Username   string
	Name       string
	Email      *string
	Department string
	Role       string
	Status     string
}

// GetUserByUsername returns user by username
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*ds.User, error) {
	user := &ds.User{}
	err := r.db.WithContext(ctx).Where("username = ?", username).First(user).Error
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

// GetUserByID - получить пользователя по ID
func (r *Repository) GetUserByID(ctx context.Context, id int) (*ds.User, error) {
	user := &ds.User{}
	if err := r.db.WithContext(ctx).First(user, id).Error; err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]ds.User, error) {
	var users []ds.User
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser checks uniqueness and saves a new user; the password is hashed by the BeforeCreate hook.
func (r *Repository) CreateUser(ctx context.Context, user *ds.User) error {
	if user.Password == "" {
		return fmt.Errorf("password is empty")
	}
	if _, err := r.GetUserByUsername(ctx, user.Username); err == nil {
		return fmt.Errorf("user %q: %w", user.Username, ErrAlreadyExists)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	if user.Role == "" {
		user.Role = ds.RoleUser
	}
	if user.Status == "" {
		user.Status = ds.StatusActive
	}
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

// UpdateUser - обновить данные пользователя
func (r *Repository) UpdateUser(ctx context.Context, id int, upd UserUpdate) (*ds.User, error) {
	existing, err := r.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Username != existing.Username {
		other, err := r.GetUserByUsername(ctx, upd.Username)
		if err == nil && other.ID != id {
			return nil, fmt.Errorf("user %q: %w", upd.Username, ErrAlreadyExists)
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	fields := map[string]interface{}{
		"username":   upd.Username,
		"name":       upd.Name,
		"email":      upd.Email,
		"department": upd.Department,
	}
	if upd.Role != "" {
		fields["role"] = upd.Role
	}
	if upd.Status != "" {
		fields["status"] = upd.Status
	}

	err = r.db.WithContext(ctx).Model(&ds.User{}).Where("id = ?", id).Updates(fields).Error
	if err != nil {
		return nil, translate(err)
	}

	// роль или статус поменялись, старые токены больше не годятся
	if (upd.Role != "" && upd.Role != existing.Role) || (upd.Status != "" && upd.Status != existing.Status) {
		r.revokeQuietly(ctx, id)
	}
	return r.GetUserByID(ctx, id)
}

// ChangePassword hashes and stores a new password and revokes the user's tokens.
func (r *Repository) ChangePassword(ctx context.Context, id int, newPassword string) error {
	hashed, err := ds.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("bcrypt generate error: %w", err)
	}
	res := r.db.WithContext(ctx).Model(&ds.User{}).Where("id = ?", id).Update("password", hashed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	r.revokeQuietly(ctx, id)
	return nil
}

func (r *Repository) DeleteUser(ctx context.Context, id int) error {
	res := r.db.WithContext(ctx).Delete(&ds.User{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	r.revokeQuietly(ctx, id)
	return nil
}

// UpdateLastLogin stamps the login time.
func (r *Repository) UpdateLastLogin(ctx context.Context, id int) error {
	return r.db.WithContext(ctx).Model(&ds.User{}).Where("id = ?", id).Update("last_login", time.Now()).Error
}

// Authenticate: возвращает пользователя, если логин+пароль верны
func (r *Repository) Authenticate(ctx context.Context, username, password string) (*ds.User, error) {
	user, err := r.GetUserByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, ErrUserDisabled
	}
	return user, nil
}

// LoginUser: полноценный flow: проверка, генерация JWT, сохранение токена
func (r *Repository) LoginUser(ctx context.Context, username, password string) (string, *ds.User, *ds.JWTClaims, error) {
	if r.jwtKey == "" {
		return "", nil, nil, fmt.Errorf("jwt key is empty")
	}

	user, err := r.Authenticate(ctx, username, password)
	if err != nil {
		return "", nil, nil, err
	}

	token, claims, err := utils.GenerateJWT([]byte(r.jwtKey), r.jwtTTL, user)
	if err != nil {
		return "", nil, nil, err
	}

	if err := r.SaveSession(ctx, claims); err != nil {
		return "", nil, nil, fmt.Errorf("save session error: %w", err)
	}

	if err := r.UpdateLastLogin(ctx, user.ID); err != nil {
		logrus.Warnf("error updating last login of user %d: %v", user.ID, err)
	} else {
		now := time.Now()
		user.LastLogin = &now
	}

	logrus.WithFields(logrus.Fields{"username": user.Username, "role": user.Role}).Info("login succeeded")
	return token, user, claims, nil
}

// ParseToken validates a token and checks that it has not been revoked.
func (r *Repository) ParseToken(ctx context.Context, token string) (*ds.JWTClaims, error) {
	claims, err := utils.ParseJWT([]byte(r.jwtKey), token)
	if err != nil {
		return nil, err
	}
	active, err := r.SessionActive(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("session lookup: %w", err)
	}
	if !active {
		return nil, fmt.Errorf("%w: token revoked", utils.ErrInvalidToken)
	}
	return claims, nil
}

// EnsureAdmin creates the admin account unless a user with that name already exists.
func (r *Repository) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, fmt.Errorf("admin username and password are required")
	}
	_, err := r.GetUserByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	admin := &ds.User{
		Username: username,
		Password: password,
		Name:     "Administrator",
		Role:     ds.RoleAdmin,
		Status:   ds.StatusActive,
	}
	if err := r.CreateUser(ctx, admin); err != nil {
		return false, err
	}
	return true, nil
}
