package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateValidateRoundTrip(t *testing.T) {
	m := NewManager("secret", "statecache", time.Hour)

	tok, err := m.Generate("job", 0)
	require.NoError(t, err)

	claims, err := m.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "job", claims.Scope)
	assert.Equal(t, "statecache", claims.Issuer)
}

func TestGenerateRejectsEmptyScope(t *testing.T) {
	m := NewManager("secret", "statecache", time.Hour)

	_, err := m.Generate("", 0)
	assert.Error(t, err)
}

func TestValidateRejectsWrongKey(t *testing.T) {
	m := NewManager("secret", "statecache", time.Hour)
	other := NewManager("different", "statecache", time.Hour)

	tok, err := m.Generate("job", 0)
	require.NoError(t, err)

	_, err = other.Validate(tok)
	assert.Error(t, err)
}

func TestValidateRejectsWrongIssuer(t *testing.T) {
	m := NewManager("secret", "statecache", time.Hour)
	other := NewManager("secret", "someone-else", time.Hour)

	tok, err := m.Generate("job", 0)
	require.NoError(t, err)

	_, err = other.Validate(tok)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	// A negative default TTL mints tokens that are already expired.
	expiredIssuer := NewManager("secret", "statecache", -time.Minute)
	tok, err := expiredIssuer.Generate("job", 0)
	require.NoError(t, err)

	m := NewManager("secret", "statecache", time.Hour)
	_, err = m.Validate(tok)
	assert.Error(t, err)
}

func TestScopeAllows(t *testing.T) {
	claims := &Claims{Scope: "job"}
	assert.True(t, claims.Allows("job"))
	assert.True(t, claims.Allows("job_state"))
	assert.False(t, claims.Allows("jo"))
	assert.False(t, claims.Allows("other_state"))

	wildcard := &Claims{Scope: "*"}
	assert.True(t, wildcard.Allows("anything"))
}
