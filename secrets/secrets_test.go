package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newLocalStore builds a store forced onto the encrypted-file backend so
// tests never touch the system keyring.
func newLocalStore(t *testing.T, legacyFile string) *Store {
	t.Helper()
	dir := t.TempDir()
	return &Store{
		useLocal:  true,
		localFile: filepath.Join(dir, ".credentials"),
		legacy:    legacyFile,
		key:       deriveKey(),
		local:     make(map[string]string),
	}
}

func TestStore_RoundTrip(t *testing.T) {
	s := newLocalStore(t, "")

	_, err := s.Token()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.StoreToken("1234567890123456"))

	token, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "1234567890123456", token)

	require.NoError(t, s.DeleteToken())
	_, err = s.Token()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_EmptyTokenRejected(t *testing.T) {
	s := newLocalStore(t, "")
	assert.Error(t, s.StoreToken(""))
}

func TestStore_PersistsEncrypted(t *testing.T) {
	s := newLocalStore(t, "")
	require.NoError(t, s.StoreToken("1234567890123456"))

	raw, err := os.ReadFile(s.localFile)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "1234567890123456",
		"token must not appear in plaintext on disk")

	// A fresh store over the same file and key reads it back.
	reloaded := &Store{
		useLocal:  true,
		localFile: s.localFile,
		key:       s.key,
		local:     make(map[string]string),
	}
	reloaded.loadLocal()

	token, err := reloaded.Token()
	require.NoError(t, err)
	assert.Equal(t, "1234567890123456", token)
}

func TestStore_LegacyImport(t *testing.T) {
	dir := t.TempDir()
	legacy := filepath.Join(dir, "accountinfo.txt")
	require.NoError(t, os.WriteFile(legacy, []byte("9876543210987654\n"), 0600))

	s := newLocalStore(t, legacy)

	token, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "9876543210987654", token)

	// Import persists: removing the legacy file must not lose the token.
	require.NoError(t, os.Remove(legacy))
	token, err = s.Token()
	require.NoError(t, err)
	assert.Equal(t, "9876543210987654", token)
}

func TestStore_LegacyAbsentIsNotFound(t *testing.T) {
	s := newLocalStore(t, "/nonexistent/accountinfo.txt")
	_, err := s.Token()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEncryptDecrypt(t *testing.T) {
	key := deriveKey()

	ciphertext, err := encrypt(key, []byte("payload"))
	require.NoError(t, err)

	plaintext, err := decrypt(key, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(plaintext))

	// Tampered data fails authentication.
	_, err = decrypt(key, []byte("bm90IHZhbGlkIGNpcGhlcnRleHQ="))
	assert.Error(t, err)
}
