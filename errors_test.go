package pooledwriter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := newPoolError(ErrIO, cause)

	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "io: boom", err.Error())
}

func TestErrorKindString(t *testing.T) {
	t.Parallel()

	cases := map[ErrorKind]string{
		ErrChannelSend:    "channel send",
		ErrChannelReceive: "channel receive",
		ErrCompression:    "compression",
		ErrIO:             "io",
		ErrInvalidLevel:   "invalid level",
		ErrorKind(99):     "unknown",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}

func TestChannelSendErr(t *testing.T) {
	t.Parallel()

	err := channelSendErr()
	assert.Equal(t, ErrChannelSend, err.Kind)
}
