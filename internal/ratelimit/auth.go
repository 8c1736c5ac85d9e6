package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/codecircle/recruit/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const (
	keyAuthResend = "auth:resend:%s"
	keyAuthLogin  = "auth:login:%s"
)

// AuthLimiter throttles verification-code resends per applicant and
// login attempts per address. When disabled every check passes.
type AuthLimiter struct {
	enabled bool
	bucket  *TokenBucket

	resendRate  float64
	resendBurst int
	loginRate   float64
	loginBurst  int
}

func NewAuthLimiter(cfg config.Config) (*AuthLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.ResendRate <= 0 || limitCfg.ResendBurst <= 0 {
		return nil, errors.New("resend rate limit must be positive")
	}
	if limitCfg.LoginRate <= 0 || limitCfg.LoginBurst <= 0 {
		return nil, errors.New("login rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &AuthLimiter{
		enabled:     true,
		bucket:      NewTokenBucket(client),
		resendRate:  limitCfg.ResendRate,
		resendBurst: limitCfg.ResendBurst,
		loginRate:   limitCfg.LoginRate,
		loginBurst:  limitCfg.LoginBurst,
	}, nil
}

func (l *AuthLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *AuthLimiter) AllowResend(ctx context.Context, applicantID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyAuthResend, strings.TrimSpace(applicantID)), l.resendRate, l.resendBurst)
}

func (l *AuthLimiter) AllowLogin(ctx context.Context, identity string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyAuthLogin, strings.ToLower(strings.TrimSpace(identity))), l.loginRate, l.loginBurst)
}
