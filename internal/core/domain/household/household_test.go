package household

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	require.True(t, StatusActive.IsValidTransition(StatusSuspended))
	require.True(t, StatusActive.IsValidTransition(StatusClosed))
	require.True(t, StatusSuspended.IsValidTransition(StatusActive))
	require.True(t, StatusSuspended.IsValidTransition(StatusClosed))

	require.False(t, StatusClosed.IsValidTransition(StatusActive))
	require.False(t, StatusClosed.IsValidTransition(StatusSuspended))
	require.False(t, StatusActive.IsValidTransition(StatusActive))
	require.False(t, Status("bogus").IsValidTransition(StatusActive))
}

func TestCanAccess(t *testing.T) {
	require.True(t, (&Household{Status: StatusActive}).CanAccess())
	require.False(t, (&Household{Status: StatusSuspended}).CanAccess())
	require.False(t, (&Household{Status: StatusClosed}).CanAccess())
}
