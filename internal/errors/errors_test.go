package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeError(t *testing.T) {
	root := errors.New("unexpected end of JSON input")
	err := &DecodeError{
		Raw: `{"type": "setColor"`,
		Err: root,
	}

	require.Equal(t, "failed to decode envelope: unexpected end of JSON input", err.Error())
	require.ErrorIs(t, err, root)
	require.True(t, err.IsLightctlError())
}

func TestChannelUnavailableError(t *testing.T) {
	err := &ChannelUnavailableError{Err: ErrChannelClosed}

	require.Equal(t, "channel unavailable: channel closed", err.Error())
	require.ErrorIs(t, err, ErrChannelClosed)
	require.True(t, err.IsLightctlError())
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrClientNotStarted,
		ErrClientAlreadyStarted,
		ErrClientClosed,
		ErrChannelClosed,
		ErrRequestTimeout,
		ErrControllerStopped,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}

			require.NotErrorIs(t, a, b)
		}
	}
}
