package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckAdminKey(t *testing.T) {
	hash, err := HashAdminKey("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, CheckAdminKey("hunter2", hash))
	assert.False(t, CheckAdminKey("hunter3", hash))
	assert.False(t, CheckAdminKey("hunter2", "not-a-hash"))
}
