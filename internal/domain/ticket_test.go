package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTicketStatus(t *testing.T) {
	t.Run("canonical names pass through", func(t *testing.T) {
		for _, name := range []string{"Open", "InProgress", "Finalized", "Cancelled"} {
			status, err := ParseTicketStatus(name)
			require.NoError(t, err)
			assert.Equal(t, TicketStatus(name), status)
		}
	})

	t.Run("legacy variants normalize to InProgress", func(t *testing.T) {
		for _, raw := range []string{"andamento", "Andamento", "em andamento", "EM ANDAMENTO", "  em andamento  "} {
			status, err := ParseTicketStatus(raw)
			require.NoError(t, err)
			assert.Equal(t, TicketStatusInProgress, status)
		}
	})

	t.Run("variant and canonical agree", func(t *testing.T) {
		fromVariant, err := ParseTicketStatus("em andamento")
		require.NoError(t, err)
		fromCanonical, err := ParseTicketStatus("InProgress")
		require.NoError(t, err)
		assert.Equal(t, fromCanonical, fromVariant)
	})

	t.Run("surrounding whitespace is trimmed", func(t *testing.T) {
		status, err := ParseTicketStatus("  Finalized ")
		require.NoError(t, err)
		assert.Equal(t, TicketStatusFinalized, status)
	})

	t.Run("canonical names are case sensitive", func(t *testing.T) {
		for _, raw := range []string{"open", "OPEN", "finalized", "cancelled", "inprogress"} {
			_, err := ParseTicketStatus(raw)
			assert.Error(t, err, raw)
		}
	})

	t.Run("unknown values fail", func(t *testing.T) {
		for _, raw := range []string{"", "   ", "Closed", "Pendente"} {
			_, err := ParseTicketStatus(raw)
			assert.Error(t, err, raw)
		}
	})
}

func TestTicketStatusIsTerminal(t *testing.T) {
	assert.True(t, TicketStatusFinalized.IsTerminal())
	assert.True(t, TicketStatusCancelled.IsTerminal())
	assert.False(t, TicketStatusOpen.IsTerminal())
	assert.False(t, TicketStatusInProgress.IsTerminal())
}
