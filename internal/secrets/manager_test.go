package secrets

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	m := NewManager(zerolog.Nop())

	tests := []struct {
		name  string
		key   string
		value string
		want  bool
	}{
		{"empty value", "ANY", "", false},
		{"short api key", "STRIPE_API_KEY", "short", false},
		{"long api key", "STRIPE_API_KEY", "sk_live_0123456789", true},
		{"postgres url", "DATABASE_URL", "postgres://u:p@h:5432/db", true},
		{"postgresql url", "DB_URL", "postgresql://u:p@h:5432/db", true},
		{"mysql url rejected", "DATABASE_URL", "mysql://u:p@h/db", false},
		{"plain value", "LOG_LEVEL", "debug", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Validate(tt.key, tt.value))
		})
	}
}

func TestGenerateJWTSecret(t *testing.T) {
	m := NewManager(zerolog.Nop())

	a := m.GenerateJWTSecret(64)
	b := m.GenerateJWTSecret(64)
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestGeneratePassword(t *testing.T) {
	m := NewManager(zerolog.Nop())

	pw := m.GeneratePassword(32)
	assert.Len(t, pw, 32)
	assert.NotEqual(t, pw, m.GeneratePassword(32))
}

func TestPrepare_FillsMissing(t *testing.T) {
	m := NewManager(zerolog.Nop())

	configured := map[string]string{"DATABASE_URL": "postgres://u:p@h/db"}
	final := m.Prepare(configured)

	assert.NotEmpty(t, final["JWT_SECRET"])
	assert.NotEmpty(t, final["SECRET_KEY"])
	assert.Equal(t, "postgres://u:p@h/db", final["DATABASE_URL"])

	// The input map is untouched.
	assert.NotContains(t, configured, "JWT_SECRET")
}

func TestPrepare_KeepsExisting(t *testing.T) {
	m := NewManager(zerolog.Nop())

	final := m.Prepare(map[string]string{"JWT_SECRET": "preset", "SECRET_KEY": "alsopreset"})
	assert.Equal(t, "preset", final["JWT_SECRET"])
	assert.Equal(t, "alsopreset", final["SECRET_KEY"])
}
