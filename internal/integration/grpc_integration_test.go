package integration

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/covertcloak/scripture-alarm/internal/config"
	"github.com/covertcloak/scripture-alarm/internal/domain/alarm"
	"github.com/covertcloak/scripture-alarm/internal/service/client"
	"github.com/covertcloak/scripture-alarm/internal/service/daemon"
	"github.com/covertcloak/scripture-alarm/internal/service/manager"
)

// freeAddress reserves a loopback port for a test daemon.
func freeAddress(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	require.NoError(t, l.Close())

	return addr
}

// writeConfig saves settings pointing at a temporary state file.
func writeConfig(t *testing.T, addr string) string {
	t.Helper()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "settings.yaml")

	settings := config.Default()
	settings.ListenAddress = addr
	settings.StateFile = filepath.Join(dir, "state.yaml")
	settings.Timeout = 3 * time.Second
	settings.Speech.Command = "scripture-alarm-test-missing-tts"
	settings.Volume.Control = "scripture-alarm-test-missing-control"

	require.NoError(t, config.Save(cfgPath, settings))

	return cfgPath
}

// startDaemon runs the real daemon in the background and returns a stop
// function that waits for it to exit.
func startDaemon(t *testing.T, cfgPath string) (stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- daemon.Run(ctx, &daemon.Options{ConfigPath: cfgPath})
	}()

	waitForStatus(t, cfgPath)

	return func() {
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("daemon did not stop")
		}
	}
}

func waitForStatus(t *testing.T, cfgPath string) {
	t.Helper()

	require.Eventually(t, func() bool {
		return status(cfgPath) != ""
	}, 5*time.Second, 20*time.Millisecond)
}

func status(cfgPath string) string {
	var out bytes.Buffer

	err := client.Run(context.Background(), &client.Options{
		ConfigPath: cfgPath,
		Action:     client.ActionStatus,
		Out:        &out,
	})
	if err != nil {
		return ""
	}

	return out.String()
}

// TestDaemon_EditsReachRunningDaemon adds an alarm from the command line side
// and sees it armed by the running daemon, then again after a restart.
func TestDaemon_EditsReachRunningDaemon(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfig(t, freeAddress(t))
	stop := startDaemon(t, cfgPath)

	require.Contains(t, status(cfgPath), "No alarms armed")

	ctx := context.Background()

	var out bytes.Buffer

	m, err := manager.Open(ctx, &manager.Options{ConfigPath: cfgPath, Out: &out})
	require.NoError(t, err)

	created, err := m.Add(ctx, alarm.Record{
		Hour:    (time.Now().Hour() + 12) % 24,
		Enabled: true,
		Days:    alarm.EveryDay,
		Content: alarm.ByCategory(alarm.CategoryPsalms),
	})
	require.NoError(t, err)
	require.NoError(t, m.Close())

	require.Contains(t, status(cfgPath), "Alarm 1 fires")
	require.Equal(t, 1, created.ID)

	// Dismissing with nothing ringing is reported, not ignored.
	err = client.Run(ctx, &client.Options{ConfigPath: cfgPath, Action: client.ActionDismiss, Out: &out})
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "no active alert"), err.Error())

	stop()

	// A restarted daemon re-arms from the store alone.
	stop = startDaemon(t, cfgPath)
	defer stop()

	require.Contains(t, status(cfgPath), "Alarm 1 fires")
}

// TestDaemon_SingleInstance refuses a second daemon on the same state file.
func TestDaemon_SingleInstance(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfig(t, freeAddress(t))
	stop := startDaemon(t, cfgPath)
	defer stop()

	err := daemon.Run(context.Background(), &daemon.Options{
		ConfigPath:    cfgPath,
		ListenAddress: freeAddress(t),
	})
	require.ErrorIs(t, err, daemon.ErrAlreadyRunning)
}
