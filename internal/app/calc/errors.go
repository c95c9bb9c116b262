package calc

import (
	"context"
	"net"

	"github.com/cockroachdb/errors"

	"github.com/osa030/playtime/internal/infra/config"
	"github.com/osa030/playtime/internal/infra/youtube"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrPlaylistNotFound = errors.New("playlist not found")
	ErrNetwork          = errors.New("network error")
	ErrBusy             = errors.New("too many calculations in flight")
)

// classify marks catalog failures with the calculation error kinds.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, youtube.ErrPlaylistNotFound) {
		return errors.Mark(err, ErrPlaylistNotFound)
	}
	var netErr net.Error
	if errors.Is(err, youtube.ErrNetwork) || errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) {
		return errors.Mark(err, ErrNetwork)
	}
	return err
}

// UserMessage returns the configured user-facing message for err.
func UserMessage(err error, messages config.MessagesConfig) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return messages.InvalidInput
	case errors.Is(err, ErrPlaylistNotFound):
		return messages.NotFound
	case errors.Is(err, ErrNetwork):
		return messages.Network
	case errors.Is(err, ErrBusy):
		return messages.Busy
	default:
		return messages.DefaultError
	}
}
