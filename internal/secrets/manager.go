package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"strings"

	"github.com/rs/zerolog"
)

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*"

// Manager validates, generates, and prepares secret values before they are
// pushed to a repository's secret store.
type Manager struct {
	logger zerolog.Logger
}

func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{logger: logger.With().Str("component", "secrets").Logger()}
}

// Validate performs basic format validation for common secret types.
func (m *Manager) Validate(key, value string) bool {
	if value == "" {
		return false
	}

	upper := strings.ToUpper(key)

	if strings.Contains(upper, "API_KEY") {
		return len(value) > 8
	}

	if strings.Contains(upper, "DB_URL") || strings.Contains(upper, "DATABASE_URL") {
		return strings.HasPrefix(value, "postgres://") || strings.HasPrefix(value, "postgresql://")
	}

	return true
}

// GenerateJWTSecret returns a URL-safe random token of length bytes of
// entropy.
func (m *Manager) GenerateJWTSecret(length int) string {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// GeneratePassword returns a random password from a mixed alphabet.
func (m *Manager) GeneratePassword(length int) string {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	for i := range b {
		b[i] = passwordAlphabet[b[i]%byte(len(passwordAlphabet))]
	}
	return string(b)
}

// Prepare fills in missing generated secrets and validates the rest. The
// input map is not mutated.
func (m *Manager) Prepare(configured map[string]string) map[string]string {
	final := make(map[string]string, len(configured)+2)
	for k, v := range configured {
		final[k] = v
	}

	if _, ok := final["JWT_SECRET"]; !ok {
		final["JWT_SECRET"] = m.GenerateJWTSecret(64)
		m.logger.Info().Msg("generated new JWT_SECRET")
	}
	if _, ok := final["SECRET_KEY"]; !ok {
		final["SECRET_KEY"] = m.GenerateJWTSecret(64)
		m.logger.Info().Msg("generated new SECRET_KEY")
	}

	for k, v := range final {
		if !m.Validate(k, v) {
			m.logger.Warn().Str("key", k).Msg("secret failed basic validation")
		}
	}

	return final
}
