package supervisor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yllada/mullvad-supervisor/common"
)

func TestEnsureAccount_IdempotentWhenConfigured(t *testing.T) {
	runner := &scriptRunner{results: mapResults("account get", accountConfigured)}
	s, _ := newTestSupervisor(runner, &fakeTokens{token: "1234567890123456"}, nil)

	err := s.EnsureAccount(context.Background())
	require.NoError(t, err)

	// Already configured: no write action performed.
	assert.Equal(t, 1, runner.count("account get"))
	assert.Zero(t, runner.count("account set"))
}

func TestEnsureAccount_SetsWhenMissing(t *testing.T) {
	runner := &scriptRunner{results: mapResults("account get", noAccount)}
	s, _ := newTestSupervisor(runner, &fakeTokens{token: "1234567890123456"}, nil)

	err := s.EnsureAccount(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, runner.count("account set 1234567890123456"),
		"token must be passed verbatim")
}

func TestEnsureAccount_TokenAbsent(t *testing.T) {
	runner := &scriptRunner{results: mapResults("account get", noAccount)}
	s, _ := newTestSupervisor(runner, &fakeTokens{err: common.ErrTokenNotFound}, nil)

	err := s.EnsureAccount(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrTokenNotFound)
	assert.Zero(t, runner.count("account set"))
}

func TestEnsureAccount_UnexpectedOutputCountsAsConfigured(t *testing.T) {
	// Anything other than the literal sentinel is treated as configured.
	runner := &scriptRunner{results: mapResults("account get", "error: daemon busy\n")}
	s, _ := newTestSupervisor(runner, &fakeTokens{}, nil)

	err := s.EnsureAccount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, runner.count("account set"))
}
