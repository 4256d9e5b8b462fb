package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheapKDF keeps tests fast; production vaults use defaultKDF.
var cheapKDF = kdfParams{Time: 1, Memory: 1024, Threads: 1}

func TestDeriveKey(t *testing.T) {
	salt := []byte("fixed-salt-value")
	key1 := cheapKDF.deriveKey([]byte("password"), salt)
	key2 := cheapKDF.deriveKey([]byte("password"), salt)
	key3 := cheapKDF.deriveKey([]byte("password2"), salt)

	assert.Len(t, key1, keyLen)
	assert.Equal(t, key1, key2, "same password+salt should produce same key")
	assert.NotEqual(t, key1, key3, "different passwords should produce different keys")
}

func TestDeriveKeyDependsOnParams(t *testing.T) {
	salt := []byte("fixed-salt-value")
	other := kdfParams{Time: 2, Memory: 1024, Threads: 1}
	assert.NotEqual(t, cheapKDF.deriveKey([]byte("pw"), salt), other.deriveKey([]byte("pw"), salt))
}

func TestSealOpen(t *testing.T) {
	key := make([]byte, keyLen)
	plaintext := []byte("community=private")

	sealed, err := seal(key, plaintext)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "private")

	opened, err := open(key, sealed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestOpenWrongKey(t *testing.T) {
	key1 := make([]byte, keyLen)
	key2 := make([]byte, keyLen)
	key2[0] = 1

	sealed, err := seal(key1, []byte("secret"))
	require.NoError(t, err)

	_, err = open(key2, sealed)
	assert.Error(t, err)
}

func TestOpenTruncated(t *testing.T) {
	_, err := open(make([]byte, keyLen), []byte("short"))
	assert.Error(t, err)
}

func TestGenerateSalt(t *testing.T) {
	salt, err := generateSalt()
	require.NoError(t, err)
	assert.Len(t, salt, saltLen)
}
