package server

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pichat-dev/pichat-go-server/internal/api"
	"github.com/pichat-dev/pichat-go-server/internal/model"
	"github.com/pichat-dev/pichat-go-server/internal/protocol"
	"github.com/pichat-dev/pichat-go-server/internal/registry"
)

type workerFixture struct {
	reg     *registry.Registry
	handler *ConnectionHandler
	client  net.Conn
	scanner *bufio.Scanner
	done    chan struct{}
}

func startWorker(t *testing.T, silenceTimeout time.Duration) *workerFixture {
	t.Helper()
	reg := registry.New(0)
	a := api.New(reg, "admin")

	serverSide, clientSide := net.Pipe()
	uid := reg.AddClient("pipe:1")
	handler := newConnectionHandler(serverSide, "pipe:1", uid, a, reg, silenceTimeout, 5*time.Millisecond)

	f := &workerFixture{
		reg:     reg,
		handler: handler,
		client:  clientSide,
		scanner: bufio.NewScanner(clientSide),
		done:    make(chan struct{}),
	}
	go func() {
		handler.handleConnection()
		close(f.done)
	}()
	t.Cleanup(func() {
		_ = clientSide.Close()
		select {
		case <-f.done:
		case <-time.After(2 * time.Second):
			t.Error("worker did not terminate")
		}
	})
	return f
}

func (f *workerFixture) sendLine(t *testing.T, line string) {
	t.Helper()
	if _, err := f.client.Write([]byte(line)); err != nil {
		t.Fatalf("client write failed: %v", err)
	}
}

func (f *workerFixture) readLine(t *testing.T) string {
	t.Helper()
	_ = f.client.SetReadDeadline(time.Now().Add(2 * time.Second))
	if !f.scanner.Scan() {
		t.Fatalf("expected a response line, got none: %v", f.scanner.Err())
	}
	return f.scanner.Text()
}

func TestWorkerServesCommands(t *testing.T) {
	f := startWorker(t, time.Minute)

	f.sendLine(t, "LOGIN|username=alice|password=p")
	assert.Equal(t, protocol.SuccessMark+"Now you are alice", f.readLine(t))

	f.sendLine(t, "ECHO|msg=hi there")
	assert.Equal(t, protocol.SuccessMark+"hi there", f.readLine(t))

	f.sendLine(t, "SEND|username=nobody|msg=x")
	resp := f.readLine(t)
	assert.True(t, strings.HasPrefix(resp, protocol.FailMark), "got %q", resp)
	assert.Contains(t, resp, "No such user")
}

func TestWorkerDeliversQueuedJobs(t *testing.T) {
	f := startWorker(t, time.Minute)

	require.NoError(t, f.reg.EnqueueJob(f.handler.uid, model.NewMessageJob("2024-05-01 10:00:00", "bob", "hi")))

	line := f.readLine(t)
	assert.Equal(t, "MSGFROM [2024-05-01 10:00:00 bob] (2): hi", line)
}

func TestWorkerExitCommand(t *testing.T) {
	f := startWorker(t, time.Minute)

	f.sendLine(t, "EXIT")
	assert.Equal(t, protocol.SuccessMark+"Bye", f.readLine(t))
	assert.Equal(t, "Bye", f.readLine(t))

	select {
	case <-f.done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not terminate after EXIT")
	}
}

func TestWorkerSilenceTimeout(t *testing.T) {
	f := startWorker(t, 20*time.Millisecond)

	assert.Equal(t, protocol.TimeoutNotice, f.readLine(t))
	select {
	case <-f.done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not terminate after the silence timeout")
	}
}

func TestWorkerRemovesEphemeralOnPeerClose(t *testing.T) {
	f := startWorker(t, time.Minute)

	_ = f.client.Close()
	select {
	case <-f.done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not terminate on peer close")
	}

	// Never authenticated: the record must be gone entirely.
	assert.Empty(t, f.reg.ListDisplayNames(f.handler.uid))
}

func TestWorkerKeepsDurableRecordOffline(t *testing.T) {
	f := startWorker(t, time.Minute)

	f.sendLine(t, "LOGIN|username=alice|password=p")
	assert.Equal(t, protocol.SuccessMark+"Now you are alice", f.readLine(t))

	_ = f.client.Close()
	select {
	case <-f.done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not terminate on peer close")
	}

	records := f.reg.Snapshot()
	require.Len(t, records, 1)
	assert.Equal(t, "alice", records[0].Login)
	assert.False(t, records[0].Online)
}

func TestWorkerDropsOversizedRequests(t *testing.T) {
	f := startWorker(t, time.Minute)

	oversized := make([]byte, CmdBufSize)
	for i := range oversized {
		oversized[i] = 'A'
	}
	f.sendLine(t, string(oversized))

	// The chunk clearing drop mode is discarded too; only the command after
	// it gets a response.
	f.sendLine(t, "ECHO|msg=dropped")
	f.sendLine(t, "ECHO|msg=kept")

	assert.Equal(t, protocol.SuccessMark+"kept", f.readLine(t))
}
