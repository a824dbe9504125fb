package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordSetAndMatches(t *testing.T) {
	var p Password
	require.NoError(t, p.Set("correct horse battery"))
	require.NotEmpty(t, p.Hash)
	assert.NotEqual(t, "correct horse battery", p.Hash)

	ok, err := p.Matches("correct horse battery")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Matches("wrong password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordMatchesFromStoredHash(t *testing.T) {
	// Simulates the login path: only the hash column comes back from the DB.
	var p Password
	require.NoError(t, p.Set("secret123"))

	restored := Password{Hash: p.Hash}
	ok, err := restored.Matches("secret123")
	require.NoError(t, err)
	assert.True(t, ok)
}
