// internal/game/errors_test.go
package game

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blattodea-games/roachpoker/internal/realtime"
)

func TestErrorCodeMapping(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{ErrAccessDenied, CodeAccessDenied},
		{realtime.ErrAccessDenied, CodeAccessDenied},
		{ErrRoomNotFound, CodeRoomNotFound},
		{ErrGameNotActive, CodeGameNotActive},
		{ErrNotYourTurn, CodeNotYourTurn},
		{ErrPlayerNotInGame, CodePlayerNotInGame},
		{ErrRecoveryFailed, CodeRecoveryFailed},
		{ErrInvalidAction, CodeInvalidAction},
		{fmt.Errorf("%w: card is not in your hand", ErrInvalidAction), CodeInvalidAction},
		{fmt.Errorf("%w: join code mismatch", ErrAccessDenied), CodeAccessDenied},
		{errors.New("something else entirely"), CodeInvalidAction},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, ErrorCode(tc.err), "error %q", tc.err)
	}
}
