package service

import (
	"fmt"
	"time"

	"github.com/gericht/reservation-service/internal/entity"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims — полезная нагрузка JWT, которую ожидает middleware.
type TokenClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// TokenManager выпускает и проверяет JWT, подписанные HMAC-ключом.
type TokenManager struct {
	secret     []byte
	expiration time.Duration
}

func NewTokenManager(secret string, expiration time.Duration) *TokenManager {
	if expiration <= 0 {
		expiration = 168 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), expiration: expiration}
}

func (m *TokenManager) Issue(user *entity.User) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.FirstName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse валидирует токен и возвращает claims. Любая проблема токена
// (подпись, срок, формат) считается невалидным токеном.
func (m *TokenManager) Parse(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: token is not valid", entity.ErrInvalidInput)
	}

	return claims, nil
}
