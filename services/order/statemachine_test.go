package order

import (
	"testing"

	"floreria/models"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.OrderStatus
		want     bool
	}{
		{models.StatusPending, models.StatusAccepted, true},
		{models.StatusPending, models.StatusRejected, true},
		{models.StatusPending, models.StatusCancelled, true},
		{models.StatusPending, models.StatusFinished, false},
		{models.StatusPending, models.StatusDelivered, false},

		{models.StatusAccepted, models.StatusAccepted, true}, // takeover
		{models.StatusAccepted, models.StatusFinished, true},
		{models.StatusAccepted, models.StatusRejected, true},
		{models.StatusAccepted, models.StatusCancelled, false},
		{models.StatusAccepted, models.StatusDelivered, false},

		{models.StatusFinished, models.StatusDelivered, true},
		{models.StatusFinished, models.StatusRejected, true},
		{models.StatusFinished, models.StatusAccepted, false},
		{models.StatusFinished, models.StatusCancelled, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, CanTransition(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatesHaveNoTransitions(t *testing.T) {
	terminals := []models.OrderStatus{models.StatusDelivered, models.StatusRejected, models.StatusCancelled}
	all := []models.OrderStatus{
		models.StatusPending, models.StatusAccepted, models.StatusFinished,
		models.StatusDelivered, models.StatusRejected, models.StatusCancelled,
	}
	for _, from := range terminals {
		require.True(t, from.Terminal())
		for _, to := range all {
			require.False(t, CanTransition(from, to), "%s -> %s must be illegal", from, to)
		}
	}
}
