package rasa

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// SignGuestToken issues the HMAC-signed credential Rasa expects on its REST
// channel. The claim set is scoped to a single conversation turn: a guest
// role under the per-conversation username, nothing more.
func SignGuestToken(secret, username string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user": map[string]any{
			"username": username,
			"role":     "guest",
		},
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("rasa: sign guest token: %w", err)
	}
	return signed, nil
}
