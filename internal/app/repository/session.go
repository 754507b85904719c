package repository

import (
	"context"
	"errors"
	"strconv"

	"dbmis/internal/app/ds"
	"dbmis/internal/app/utils"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Выданные токены хранятся в Redis: "jwt:<jti>" -> user id,
// "user_sessions:<user id>" -> множество jti этого пользователя.

func sessionKey(jti string) string {
	return "jwt:" + jti
}

func userSessionsKey(userID int) string {
	return "user_sessions:" + strconv.Itoa(userID)
}

// SaveSession stores the token id until the token expires. Without redis it is a no-op.
func (r *Repository) SaveSession(ctx context.Context, claims *ds.JWTClaims) error {
	if r.redis == nil {
		return nil
	}
	ttl := utils.TTL(claims)
	if ttl <= 0 {
		return utils.ErrInvalidToken
	}

	setKey := userSessionsKey(claims.UserID)
	_, err := r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(claims.ID), claims.UserID, ttl)
		pipe.SAdd(ctx, setKey, claims.ID)
		pipe.Expire(ctx, setKey, ttl)
		return nil
	})
	return err
}

// SessionActive reports whether the token id has not been revoked.
func (r *Repository) SessionActive(ctx context.Context, jti string) (bool, error) {
	if r.redis == nil {
		return true, nil
	}
	err := r.redis.Get(ctx, sessionKey(jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repository) DeleteSession(ctx context.Context, claims *ds.JWTClaims) error {
	if r.redis == nil {
		return nil
	}
	_, err := r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(claims.ID))
		pipe.SRem(ctx, userSessionsKey(claims.UserID), claims.ID)
		return nil
	})
	return err
}

// RevokeUserSessions drops every token issued to the user.
func (r *Repository) RevokeUserSessions(ctx context.Context, userID int) error {
	if r.redis == nil {
		return nil
	}
	setKey := userSessionsKey(userID)
	jtis, err := r.redis.SMembers(ctx, setKey).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(jtis)+1)
	for _, jti := range jtis {
		keys = append(keys, sessionKey(jti))
	}
	keys = append(keys, setKey)
	if err := r.redis.Del(ctx, keys...).Err(); err != nil {
		return err
	}
	logrus.Infof("revoked %d session(s) of user %d", len(jtis), userID)
	return nil
}

// revokeQuietly is used after user changes where a redis failure must not undo the change.
func (r *Repository) revokeQuietly(ctx context.Context, userID int) {
	if err := r.RevokeUserSessions(ctx, userID); err != nil {
		logrus.Errorf("error revoking sessions of user %d: %v", userID, err)
	}
}
