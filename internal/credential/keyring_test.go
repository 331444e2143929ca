package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMemoryKeyring(t *testing.T) {
	t.Helper()
	ring := keyring.NewArrayKeyring(nil)
	orig := openKeyring
	openKeyring = func() (keyring.Keyring, error) { return ring, nil }
	t.Cleanup(func() { openKeyring = orig })
}

func TestSetGetDelete(t *testing.T) {
	useMemoryKeyring(t)

	require.NoError(t, Set("imap:me@example.com", "hunter2"))

	got, err := Get("imap:me@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)

	require.NoError(t, Delete("imap:me@example.com"))

	_, err = Get("imap:me@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIMAPPassword_EnvWins(t *testing.T) {
	useMemoryKeyring(t)
	require.NoError(t, Set(IMAPPasswordKey("me@example.com"), "from-keyring"))

	t.Setenv(PasswordEnv, "from-env")
	got, err := IMAPPassword("me@example.com")
	require.NoError(t, err)
	assert.Equal(t, "from-env", got)
}

func TestIMAPPassword_FallsBackToKeyring(t *testing.T) {
	useMemoryKeyring(t)
	t.Setenv(PasswordEnv, "")
	require.NoError(t, Set(IMAPPasswordKey("Me@Example.com "), "from-keyring"))

	got, err := IMAPPassword("me@example.com")
	require.NoError(t, err)
	assert.Equal(t, "from-keyring", got)
}
