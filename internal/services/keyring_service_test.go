package services_test

import (
	"testing"

	"releaseradar/internal/services"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyringService_RoundTrip(t *testing.T) {
	svc := services.NewKeyringService(keyring.NewArrayKeyring(nil))

	require.NoError(t, svc.Set("github_token", []byte("ghp_x")))
	require.NoError(t, svc.Set("llm_api_key", []byte("sk")))

	got, err := svc.Get("github_token")
	require.NoError(t, err)
	assert.Equal(t, "ghp_x", got)

	keys, err := svc.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"github_token", "llm_api_key"}, keys)

	require.NoError(t, svc.Delete("github_token"))
	_, err = svc.Get("github_token")
	assert.ErrorIs(t, err, services.ErrSecretNotFound)
}

func TestKeyringService_Validation(t *testing.T) {
	svc := services.NewKeyringService(keyring.NewArrayKeyring(nil))
	assert.Error(t, svc.Set("", []byte("x")))
	assert.Error(t, svc.Set("k", nil))
	_, err := svc.Get("")
	assert.Error(t, err)
}
