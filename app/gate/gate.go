package gate

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	e "github.com/Vahidrezaa/super-duper-funicular/pkg/entities"
	"github.com/Vahidrezaa/super-duper-funicular/pkg/logger"
)

// MembershipChecker reports whether a user belongs to a channel. A
// transport error counts as a failed attempt, not a fatal one.
type MembershipChecker interface {
	IsMember(ctx context.Context, channelID string, userID int64) (bool, error)
}

// Decision is the gate's verdict. Pending lists exactly the channels the
// user still has to join, in configured order.
type Decision struct {
	Granted bool
	Pending []e.Channel
}

// Gate verifies that a user satisfies every mandatory channel before any
// content is released. Each channel is checked up to Attempts times with
// a fixed Backoff between attempts; exhausting the attempts resolves
// that channel as not joined. Re-checks always start from scratch since
// external membership can change at any time.
type Gate struct {
	// Log is a logger
	Log logger.Logger

	// Checker is the membership capability
	Checker MembershipChecker

	// Attempts is the number of checks per channel, at least 1
	Attempts uint64

	// Backoff is the fixed delay between attempts
	Backoff time.Duration
}

const (
	DefaultAttempts = 3
	DefaultBackoff  = 2 * time.Second
)

var errNotMember = errors.New("not a member")

// Check evaluates every channel for the user. An empty channel list is
// granted immediately.
func (g *Gate) Check(ctx context.Context, userID int64, channels []e.Channel) (Decision, error) {
	var pending []e.Channel

	for _, ch := range channels {
		if g.isMember(ctx, ch.ChannelID, userID) {
			continue
		}
		pending = append(pending, ch)
	}

	if len(pending) > 0 {
		return Decision{Pending: pending}, nil
	}

	return Decision{Granted: true}, nil
}

func (g *Gate) isMember(ctx context.Context, channelID string, userID int64) bool {
	attempts := g.Attempts
	if attempts == 0 {
		attempts = DefaultAttempts
	}

	delay := g.Backoff
	if delay <= 0 {
		delay = DefaultBackoff
	}

	backoff := retry.WithMaxRetries(attempts-1, retry.NewConstant(delay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		ok, err := g.Checker.IsMember(ctx, channelID, userID)
		if err != nil {
			g.Log.Warn("membership check failed", "channel_id", channelID, "tg_user_id", userID, "error", err)
			return retry.RetryableError(err)
		}

		if !ok {
			return retry.RetryableError(errNotMember)
		}

		return nil
	})

	return err == nil
}
