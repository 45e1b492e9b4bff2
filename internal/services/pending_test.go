package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingVerifyOnce(t *testing.T) {
	store := GetPendingStore()
	email := "once@example.com"
	store.Delete(email)

	code := store.Put("once", email, "hash")
	require.Len(t, code, 6)

	reg := store.Verify(email, code)
	require.NotNil(t, reg)
	assert.Equal(t, "once", reg.Username)
	assert.Equal(t, "hash", reg.PasswordHash)

	// The entry is consumed on success; replaying the code fails
	assert.Nil(t, store.Verify(email, code))
	assert.Nil(t, store.Get(email))
}

func TestPendingWrongCode(t *testing.T) {
	store := GetPendingStore()
	email := "wrong@example.com"
	store.Delete(email)

	code := store.Put("wrong", email, "hash")
	assert.Nil(t, store.Verify(email, "000000"))
	assert.Nil(t, store.Verify(email, ""))

	// A failed attempt does not consume the entry
	require.NotNil(t, store.Verify(email, code))
}

func TestPendingRefresh(t *testing.T) {
	store := GetPendingStore()
	email := "refresh@example.com"
	store.Delete(email)

	first := store.Put("refresh", email, "hash")
	second := store.Refresh(email)
	require.Len(t, second, 6)

	// The old code is superseded even if it happens to differ
	if first != second {
		assert.Nil(t, store.Verify(email, first))
	}
	require.NotNil(t, store.Verify(email, second))

	// Refresh without an entry reports nothing to refresh
	assert.Equal(t, "", store.Refresh("missing@example.com"))
}

func TestPendingCodeExpiry(t *testing.T) {
	store := GetPendingStore()
	email := "expired@example.com"
	store.Delete(email)

	code := store.Put("expired", email, "hash")
	reg := store.Get(email)
	require.NotNil(t, reg)
	reg.CodeExpires = time.Now().Add(-time.Second)

	assert.Nil(t, store.Verify(email, code))
}

func TestPendingEmailCaseInsensitive(t *testing.T) {
	store := GetPendingStore()
	store.Delete("case@example.com")

	code := store.Put("case", "Case@Example.COM", "hash")
	require.NotNil(t, store.Verify("case@example.com", code))
}
