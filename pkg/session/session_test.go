//go:build unix

package session

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jingkaihe/skillhub/pkg/types/console"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shell(t *testing.T, script string) Spec {
	t.Helper()
	return Spec{Command: "sh", Args: []string{"-c", script}, Dir: t.TempDir()}
}

func textsOf(events []console.Event, kind console.Kind) []string {
	var texts []string
	for _, ev := range events {
		if ev.Kind == kind {
			texts = append(texts, ev.Text)
		}
	}
	return texts
}

func TestStartNonexistentExecutable(t *testing.T) {
	for _, command := range []string{"/nonexistent/bin/agent", "skillhub-no-such-binary"} {
		t.Run(command, func(t *testing.T) {
			s, err := Start(context.Background(), Spec{Command: command, Dir: t.TempDir()})
			require.Error(t, err)
			assert.Nil(t, s)

			var spawnErr *SpawnError
			assert.True(t, errors.As(err, &spawnErr))
		})
	}
}

func TestStartRejectsBadWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	for _, wd := range []string{filepath.Join(dir, "missing"), file} {
		_, err := Start(context.Background(), Spec{Command: "sh", Dir: wd})
		var spawnErr *SpawnError
		assert.True(t, errors.As(err, &spawnErr), "dir %s", wd)
	}
}

func TestStartNonExecutableFile(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "main.py")
	require.NoError(t, os.WriteFile(script, []byte("print('hi')\n"), 0o644))

	_, err := Start(context.Background(), Spec{Command: script, Dir: dir})
	var spawnErr *SpawnError
	assert.True(t, errors.As(err, &spawnErr))
}

func TestEchoHello(t *testing.T) {
	s, err := Start(context.Background(), Spec{Command: "echo", Args: []string{"hello"}, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Greater(t, s.Pid(), 0)

	events := collect(s)
	require.Len(t, events, 1)
	assert.Equal(t, console.KindStdout, events[0].Kind)
	assert.Equal(t, "hello", events[0].Text)

	status, err := s.Wait(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Success())
	assert.Equal(t, StateExited, s.State())
	assert.NoError(t, s.Close())
}

func TestBothStreamsAndExitCode(t *testing.T) {
	s, err := Start(context.Background(), shell(t, "echo out; echo err 1>&2; exit 3"))
	require.NoError(t, err)

	events := collect(s)
	assert.Equal(t, []string{"out"}, textsOf(events, console.KindStdout))
	assert.Equal(t, []string{"err"}, textsOf(events, console.KindStderr))

	status, err := s.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, status.Code)
}

func TestPerStreamOrder(t *testing.T) {
	script := `for i in 1 2 3 4 5; do echo "$i"; echo "e$i" 1>&2; sleep 0.02; done`
	s, err := Start(context.Background(), shell(t, script))
	require.NoError(t, err)

	events := collect(s)
	assert.Equal(t, "1\n2\n3\n4\n5", strings.Join(textsOf(events, console.KindStdout), "\n"))
	assert.Equal(t, "e1\ne2\ne3\ne4\ne5", strings.Join(textsOf(events, console.KindStderr), "\n"))

	_, err = s.Wait(context.Background())
	require.NoError(t, err)
}

func TestInvalidUTF8Dropped(t *testing.T) {
	s, err := Start(context.Background(), shell(t, `printf '\377hello\n'`))
	require.NoError(t, err)

	events := collect(s)
	assert.Equal(t, []string{"hello"}, textsOf(events, console.KindStdout))
	_, err = s.Wait(context.Background())
	require.NoError(t, err)
}

func TestSendInputIsOneShot(t *testing.T) {
	s, err := Start(context.Background(), Spec{Command: "cat", Dir: t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, s.SendInput("ping"))

	err = s.SendInput("ping")
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.True(t, errors.Is(err, ErrInputClosed))

	events := collect(s)
	assert.Equal(t, "ping", strings.Join(textsOf(events, console.KindStdout), ""))

	status, err := s.Wait(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Success())
}

func TestSendInputAfterExit(t *testing.T) {
	s, err := Start(context.Background(), Spec{Command: "true", Dir: t.TempDir()})
	require.NoError(t, err)
	collect(s)
	_, err = s.Wait(context.Background())
	require.NoError(t, err)

	err = s.SendInput("late")
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.True(t, errors.Is(err, ErrNoProcess))
}

func TestEnvironmentOverlay(t *testing.T) {
	spec := shell(t, `echo "$SKILLHUB_TEST_VAR"; pwd`)
	spec.Env = map[string]string{"SKILLHUB_TEST_VAR": "overlay"}
	s, err := Start(context.Background(), spec)
	require.NoError(t, err)

	out := strings.Join(textsOf(collect(s), console.KindStdout), "\n")
	assert.Contains(t, out, "overlay")

	assert.Contains(t, out, spec.Dir)
	_, _ = s.Wait(context.Background())
}

func TestWaitManyCallers(t *testing.T) {
	s, err := Start(context.Background(), shell(t, "sleep 0.1; exit 4"))
	require.NoError(t, err)
	go collect(s)

	var wg sync.WaitGroup
	statuses := make([]ExitStatus, 3)
	for i := range statuses {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status, err := s.Wait(context.Background())
			assert.NoError(t, err)
			statuses[i] = status
		}(i)
	}
	wg.Wait()

	for _, status := range statuses {
		assert.Equal(t, 4, status.Code)
	}
}

func TestWaitHonoursContext(t *testing.T) {
	s, err := Start(context.Background(), shell(t, "sleep 30"))
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = s.Wait(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, StateRunning, s.State())
}

func TestCloseKillsProcessGroup(t *testing.T) {
	s, err := Start(context.Background(), shell(t, "sleep 30 & sleep 30"))
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, s.Close())
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.Equal(t, StateExited, s.State())

	_, open := <-s.Events()
	assert.False(t, open, "events must be closed after teardown")

	// idempotent
	assert.NoError(t, s.Close())

	status, err := s.Wait(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Success())
}

func TestCloseWithUnreadEvents(t *testing.T) {
	s, err := Start(context.Background(), shell(t, `i=0; while [ $i -lt 500 ]; do echo "line $i"; i=$((i+1)); done; sleep 30`))
	require.NoError(t, err)

	// nobody drains the feed; the readers must still retire
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, s.Close())
	assert.Equal(t, StateExited, s.State())
}

func TestContextCancelTearsDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, err := Start(ctx, shell(t, "sleep 30"))
	require.NoError(t, err)

	cancel()
	select {
	case <-s.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("session was not torn down on cancel")
	}
	assert.Equal(t, StateExited, s.State())
}
