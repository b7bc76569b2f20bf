// Package auth реализует аутентификацию и работу с пользовательским контекстом.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/zauremazhikova/linkpage/internal/config"
)

type contextKey string

// UserIDKey — ключ, под которым userID лежит в контексте запроса.
const UserIDKey contextKey = "userID"

// Claims — полезная нагрузка JWT: стандартные поля плюс идентификатор пользователя.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// GenerateToken - Генерация JWT токена
func GenerateToken(userID string) (string, error) {
	conf := config.AppConfig
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(conf.JWTTokenExp)),
		},
		UserID: userID,
	})

	return token.SignedString([]byte(conf.JWTSecretKey))
}

// GetUserIDFromRequest считывает и валидирует JWT из куки.
func GetUserIDFromRequest(r *http.Request) (string, error) {
	conf := config.AppConfig
	c, err := r.Cookie(conf.JWTCookieName)
	if err != nil {
		return "", errors.New("no auth cookie")
	}

	tokenStr := c.Value
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(conf.JWTSecretKey), nil
	})

	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}
	return claims.UserID, nil
}

// EnsureAuthCookie устанавливает куку, если её нет. Если есть — возвращаем UserID
func EnsureAuthCookie(w http.ResponseWriter, r *http.Request) string {
	conf := config.AppConfig

	c, err := r.Cookie(conf.JWTCookieName)
	if err == nil && c != nil {
		// Попробуем получить userID из токена
		tokenStr := c.Value
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(conf.JWTSecretKey), nil
		})

		if err == nil && token.Valid {
			return claims.UserID
		}
	}

	// создаём нового пользователя и устанавливаем токен
	newUserID := generateUserID()
	token, _ := GenerateToken(newUserID)

	http.SetCookie(w, &http.Cookie{
		Name:     conf.JWTCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(conf.JWTTokenExp),
		HttpOnly: true,
	})

	return newUserID
}

// GetUserID достает userID из контекста запроса (кладется Middleware).
func GetUserID(ctx context.Context) string {
	if v, ok := ctx.Value(UserIDKey).(string); ok {
		return v
	}
	return ""
}

// generateUserID - Генерация userID (можно UUID, а пока — random base64)
func generateUserID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
