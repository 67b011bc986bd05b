package platform

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
)

const shortIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
const shortIDLength = 10

func NewID() string {
	return uuid.New().String()
}

// NewDeploymentID returns a provider-scoped deployment identifier in the
// form "dpl_<provider>_<random>".
func NewDeploymentID(provider string) string {
	return fmt.Sprintf("dpl_%s_%s", provider, shortID())
}

func shortID() string {
	b := make([]byte, shortIDLength)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	for i := range b {
		b[i] = shortIDAlphabet[b[i]%byte(len(shortIDAlphabet))]
	}
	return string(b)
}
