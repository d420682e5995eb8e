package client

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/covertcloak/scripture-alarm/internal/api/grpc/control"
	"github.com/covertcloak/scripture-alarm/internal/domain/alarm"
	"github.com/covertcloak/scripture-alarm/internal/service/trigger"
	"github.com/covertcloak/scripture-alarm/internal/timer"
)

// stubDaemon answers the control API with canned data.
type stubDaemon struct {
	snoozed    map[int]time.Time
	sessions   []trigger.SessionInfo
	pending    []timer.Entry
	reconciled bool
}

func (s *stubDaemon) Dismiss(context.Context, int) (int, error) { return 2, nil }

func (s *stubDaemon) Snooze(context.Context, int) (map[int]time.Time, error) { return s.snoozed, nil }

func (s *stubDaemon) ReadAgain(context.Context, int) (int, error) { return 1, nil }

func (s *stubDaemon) Sessions() []trigger.SessionInfo { return s.sessions }

func (s *stubDaemon) Reconcile(context.Context) error {
	s.reconciled = true

	return nil
}

func (s *stubDaemon) Pending() []timer.Entry { return s.pending }

func dialStub(t *testing.T, stub *stubDaemon) *control.Client {
	t.Helper()

	listener := bufconn.Listen(1024 * 1024)

	server := grpc.NewServer()
	control.RegisterControlServer(server, control.NewServer(stub, stub))

	go func() {
		_ = server.Serve(listener)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()

		server.Stop()
	})

	return control.NewClient(conn)
}

// TestPerform_Messages checks the text printed for each action.
func TestPerform_Messages(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, time.March, 4, 7, 5, 0, 0, time.Local)
	stub := &stubDaemon{snoozed: map[int]time.Time{4: at, 2: at}}
	client := dialStub(t, stub)
	ctx := context.Background()

	var out bytes.Buffer

	require.NoError(t, perform(ctx, client, ActionDismiss, 0, &out))
	require.Equal(t, "Dismissed 2 alerts\n", out.String())

	out.Reset()
	require.NoError(t, perform(ctx, client, ActionSnooze, 0, &out))
	require.Equal(t, "Alarm 2 snoozed until 7:05AM\nAlarm 4 snoozed until 7:05AM\n", out.String())

	out.Reset()
	require.NoError(t, perform(ctx, client, ActionReadAgain, 4, &out))
	require.Equal(t, "Reading again for 1 alert\n", out.String())

	out.Reset()
	require.NoError(t, perform(ctx, client, ActionReload, 0, &out))
	require.True(t, stub.reconciled)

	require.Error(t, perform(ctx, client, Action("explode"), 0, &out))
}

// TestPerform_Status lists ringing alerts and armed timers.
func TestPerform_Status(t *testing.T) {
	t.Parallel()

	started := time.Date(2025, time.March, 4, 6, 30, 0, 0, time.Local)
	stub := &stubDaemon{
		sessions: []trigger.SessionInfo{{
			AlarmID:   3,
			Label:     "Wake",
			State:     trigger.StateSpeaking,
			Reference: "Psalm 118:24",
			Text:      "This is the day which the LORD hath made.",
			StartedAt: started,
			Degraded:  true,
		}},
		pending: []timer.Entry{{Payload: alarm.Payload{AlarmID: 5}, At: started.Add(24 * time.Hour)}},
	}

	var out bytes.Buffer
	require.NoError(t, perform(context.Background(), dialStub(t, stub), ActionStatus, 0, &out))

	text := out.String()
	require.Contains(t, text, `Alarm 3 "Wake" ringing since 6:30AM`)
	require.Contains(t, text, "(speech unavailable)")
	require.Contains(t, text, "Psalm 118:24: This is the day")
	require.Contains(t, text, "Alarm 5 fires Wed Mar 5 6:30 AM")
}

// TestPerform_StatusEmpty reports an idle daemon.
func TestPerform_StatusEmpty(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, perform(context.Background(), dialStub(t, new(stubDaemon)), ActionStatus, 0, &out))
	require.Equal(t, "No active alerts\nNo alarms armed\n", out.String())
}
