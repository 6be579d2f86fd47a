package gate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	e "github.com/Vahidrezaa/super-duper-funicular/pkg/entities"
	"github.com/Vahidrezaa/super-duper-funicular/pkg/logger"
)

type checkResult struct {
	member bool
	err    error
}

// scriptedChecker pops one result per call and counts calls per channel.
// An exhausted script keeps answering "not a member".
type scriptedChecker struct {
	script map[string][]checkResult
	calls  map[string]int
}

func newScriptedChecker() *scriptedChecker {
	return &scriptedChecker{
		script: map[string][]checkResult{},
		calls:  map[string]int{},
	}
}

func (s *scriptedChecker) IsMember(_ context.Context, channelID string, _ int64) (bool, error) {
	s.calls[channelID]++

	queue := s.script[channelID]
	if len(queue) == 0 {
		return false, nil
	}

	next := queue[0]
	s.script[channelID] = queue[1:]

	return next.member, next.err
}

func newTestGate(checker MembershipChecker) *Gate {
	return &Gate{
		Log:      logger.NewNop(),
		Checker:  checker,
		Attempts: DefaultAttempts,
		Backoff:  time.Microsecond,
	}
}

func channel(id string) e.Channel {
	return e.Channel{ChannelID: id, Name: "ch " + id, InviteLink: "https://t.me/join" + id}
}

func TestCheck_EmptyChannelListGranted(t *testing.T) {
	t.Parallel()

	checker := newScriptedChecker()
	g := newTestGate(checker)

	dec, err := g.Check(context.Background(), 42, nil)
	require.NoError(t, err)
	require.True(t, dec.Granted)
	require.Empty(t, dec.Pending)
	require.Empty(t, checker.calls)
}

func TestCheck_AllMembersGranted(t *testing.T) {
	t.Parallel()

	checker := newScriptedChecker()
	checker.script["-1001"] = []checkResult{{member: true}}
	checker.script["-1002"] = []checkResult{{member: true}}

	g := newTestGate(checker)

	dec, err := g.Check(context.Background(), 42, []e.Channel{channel("-1001"), channel("-1002")})
	require.NoError(t, err)
	require.True(t, dec.Granted)
	require.Equal(t, 1, checker.calls["-1001"])
	require.Equal(t, 1, checker.calls["-1002"])
}

func TestCheck_RetriesUntilMember(t *testing.T) {
	t.Parallel()

	checker := newScriptedChecker()
	checker.script["-1001"] = []checkResult{
		{member: false},
		{member: false},
		{member: true},
	}

	g := newTestGate(checker)

	dec, err := g.Check(context.Background(), 42, []e.Channel{channel("-1001")})
	require.NoError(t, err)
	require.True(t, dec.Granted)
	require.Equal(t, 3, checker.calls["-1001"])
}

func TestCheck_ExhaustedAttemptsPending(t *testing.T) {
	t.Parallel()

	checker := newScriptedChecker()

	g := newTestGate(checker)

	dec, err := g.Check(context.Background(), 42, []e.Channel{channel("-1001")})
	require.NoError(t, err)
	require.False(t, dec.Granted)
	require.Len(t, dec.Pending, 1)
	require.Equal(t, "-1001", dec.Pending[0].ChannelID)
	// bounded at exactly 3 attempts
	require.Equal(t, 3, checker.calls["-1001"])
}

func TestCheck_TransportErrorIsNegativeAttempt(t *testing.T) {
	t.Parallel()

	boom := errors.New("transport down")

	checker := newScriptedChecker()
	checker.script["-1001"] = []checkResult{
		{err: boom},
		{err: boom},
		{member: true},
	}

	g := newTestGate(checker)

	dec, err := g.Check(context.Background(), 42, []e.Channel{channel("-1001")})
	require.NoError(t, err)
	require.True(t, dec.Granted)
	require.Equal(t, 3, checker.calls["-1001"])
}

func TestCheck_PendingListsExactlyUnsatisfiedSubset(t *testing.T) {
	t.Parallel()

	checker := newScriptedChecker()
	checker.script["-1001"] = []checkResult{{member: true}}
	checker.script["-1003"] = []checkResult{{member: true}}

	g := newTestGate(checker)

	channels := []e.Channel{channel("-1001"), channel("-1002"), channel("-1003"), channel("-1004")}

	dec, err := g.Check(context.Background(), 42, channels)
	require.NoError(t, err)
	require.False(t, dec.Granted)
	require.Len(t, dec.Pending, 2)
	require.Equal(t, "-1002", dec.Pending[0].ChannelID)
	require.Equal(t, "-1004", dec.Pending[1].ChannelID)
}

func TestCheck_RecheckEvaluatesFromScratch(t *testing.T) {
	t.Parallel()

	checker := newScriptedChecker()

	g := newTestGate(checker)

	channels := []e.Channel{channel("-1001")}

	dec, err := g.Check(context.Background(), 42, channels)
	require.NoError(t, err)
	require.False(t, dec.Granted)

	// the user joined between checks
	checker.script["-1001"] = []checkResult{{member: true}}

	dec, err = g.Check(context.Background(), 42, channels)
	require.NoError(t, err)
	require.True(t, dec.Granted)
}
