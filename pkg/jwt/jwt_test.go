package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/polarbearYc/Equipment-Management-System/config"
)

func newTestManager(accessTTL time.Duration) *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: 24 * time.Hour,
	})
}

func TestManager_RoundTrip(t *testing.T) {
	m := newTestManager(15 * time.Minute)

	token, err := m.GenerateAccessToken("user-001", "S2021001", "user", "student")
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("解析 Token 失败: %v", err)
	}
	if claims.UserID != "user-001" || claims.UserCode != "S2021001" {
		t.Errorf("用户信息不正确: %+v", claims)
	}
	if claims.Role != "user" || claims.UserType != "student" {
		t.Errorf("角色信息不正确: %+v", claims)
	}
	if claims.TokenType != "access" {
		t.Errorf("期望 access 类型，实际=%s", claims.TokenType)
	}
	if claims.ID == "" {
		t.Error("应生成 jti")
	}
}

func TestManager_RefreshTokenType(t *testing.T) {
	m := newTestManager(15 * time.Minute)

	token, err := m.GenerateRefreshToken("user-001", "S2021001", "user", "student")
	if err != nil {
		t.Fatalf("生成 Refresh Token 失败: %v", err)
	}
	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if claims.TokenType != "refresh" {
		t.Errorf("期望 refresh 类型，实际=%s", claims.TokenType)
	}
}

func TestManager_Expired(t *testing.T) {
	m := newTestManager(-time.Minute)

	token, err := m.GenerateAccessToken("user-001", "S2021001", "user", "student")
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}
	if _, err := m.ParseToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("过期 Token 应返回 ErrTokenExpired，实际: %v", err)
	}
}

func TestManager_WrongSecret(t *testing.T) {
	m := newTestManager(15 * time.Minute)
	other := NewManager(&config.AuthConfig{
		JWTSecret:      "another-secret",
		AccessTokenTTL: 15 * time.Minute,
	})

	token, err := m.GenerateAccessToken("user-001", "S2021001", "user", "student")
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}
	if _, err := other.ParseToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("密钥不匹配应返回 ErrTokenInvalid，实际: %v", err)
	}
}

func TestManager_Garbage(t *testing.T) {
	m := newTestManager(15 * time.Minute)

	if _, err := m.ParseToken("not-a-jwt"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("非法字符串应返回 ErrTokenInvalid，实际: %v", err)
	}
}
