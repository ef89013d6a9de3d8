package validate

import (
	"testing"

	"github.com/pribylovaa/ticket-booking-client/internal/models"
	"github.com/stretchr/testify/require"
)

func TestAmount(t *testing.T) {
	t.Parallel()

	n, err := Amount(" 100 ")
	require.NoError(t, err)
	require.Equal(t, 100, n)

	for _, raw := range []string{"", "0", "-5", "12.5", "abc", "10abc"} {
		_, err := Amount(raw)
		require.Error(t, err, raw)
		require.Equal(t, MsgAmount, err.Error())
	}
}

func TestDepositStatus(t *testing.T) {
	t.Parallel()

	st, err := DepositStatus("completed")
	require.NoError(t, err)
	require.Equal(t, models.DepositCompleted, st)

	st, err = DepositStatus(" FAILED ")
	require.NoError(t, err)
	require.Equal(t, models.DepositFailed, st)

	_, err = DepositStatus("pending")
	require.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	require.Empty(t, ChangePassword("Abcdef1!", "Newpass2@"))
	require.Equal(t, Errors{MsgOldPassword, MsgNewPassword}, ChangePassword("x", "y"))
}

func TestID(t *testing.T) {
	t.Parallel()

	id, err := ID("42", "депозит")
	require.NoError(t, err)
	require.Equal(t, int64(42), id)

	_, err = ID("0", "депозит")
	require.Error(t, err)
}
