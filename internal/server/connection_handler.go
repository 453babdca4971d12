package server

import (
	"bytes"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pichat-dev/pichat-go-server/internal/api"
	"github.com/pichat-dev/pichat-go-server/internal/logger"
	"github.com/pichat-dev/pichat-go-server/internal/model"
	"github.com/pichat-dev/pichat-go-server/internal/protocol"
	"github.com/pichat-dev/pichat-go-server/internal/registry"
)

// CmdBufSize is the fixed read chunk. A read that fills the whole chunk
// without a line terminator is treated as an oversized request.
const CmdBufSize = 1024

// ConnectionHandler is the worker owning one accepted socket. It alternates
// between reading commands and draining the identity's job queue; nothing
// else ever touches the socket.
type ConnectionHandler struct {
	conn           Conn
	connID         string
	uid            uuid.UUID
	api            *api.API
	reg            *registry.Registry
	silenceTimeout time.Duration
	haltInterval   time.Duration
	connected      bool
	dropMode       bool
	silence        time.Duration
}

// Conn is the slice of net.Conn the worker needs; tests substitute a pipe.
type Conn interface {
	Read(b []byte) (int, error)
	Write(b []byte) (int, error)
	SetReadDeadline(t time.Time) error
	Close() error
}

func (c *ConnectionHandler) displayName() string {
	if name, ok := c.reg.Username(c.uid); ok {
		return c.connID + " (" + name + ")"
	}
	return c.connID
}

func (c *ConnectionHandler) handleConnection() {
	defer func() {
		// A fault in one worker must never take down the listener or the
		// other connections.
		if r := recover(); r != nil {
			logger.ErrorF("[%s] Critical: %v", c.connID, r)
		}

		if c.reg.IsAuthenticated(c.uid) {
			c.reg.SetOnlineStatus(c.uid, false)
		} else {
			c.reg.Remove(c.uid)
		}

		logger.DebugF("[%s] Connection closed", c.connID)
		if err := c.conn.Close(); err != nil && !isNetClosedError(err) {
			logger.WarnF("[%s] Error occured while closing connection, details: %v", c.connID, err)
		}
	}()

	buf := make([]byte, CmdBufSize)
	for c.connected {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.haltInterval))

		n, err := c.conn.Read(buf)
		switch {
		case err == nil && n == 0:
			// Spurious empty read, nothing to do.
		case err == nil:
			c.silence = 0
			c.handleChunk(buf[:n])
		case isTimeoutError(err):
			c.silence += c.haltInterval
			if c.silence >= c.silenceTimeout {
				logger.InfoF("[%s] Silence timeout, closing connection", c.displayName())
				c.sendLine(protocol.TimeoutNotice)
				c.connected = false
			}
		default:
			handleReadError(c.displayName(), err)
			c.connected = false
		}

		// The queue is drained on every pass, whatever the read produced,
		// so deliveries keep flowing while the peer stays quiet.
		c.applyJobs()
	}
}

// handleChunk decodes one read chunk into a command line and dispatches it.
func (c *ConnectionHandler) handleChunk(chunk []byte) {
	if c.dropMode {
		if len(chunk) < CmdBufSize {
			c.dropMode = false
		}
		return
	}
	if len(chunk) == CmdBufSize && !bytes.ContainsRune(chunk, '\n') {
		// Oversized request: silently discard it and everything that
		// follows until a read fits the chunk again.
		logger.WarnF("[%s] Oversized request dropped", c.displayName())
		c.dropMode = true
		return
	}

	line := strings.ToValidUTF8(string(chunk), "")
	line = strings.Trim(line, "\x00")
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	logMsg := "Cmd from " + c.displayName() + ": " + line

	response, err := c.dispatch(line)
	if err != nil {
		logger.ErrorF("%s (%v)", logMsg, err)
		c.sendLine(protocol.FailMark + err.Error())
		return
	}
	// PING is the keepalive chatter; it stays out of the access log.
	if !strings.EqualFold(line, "PING") {
		logger.Info(logMsg)
	}
	c.sendLine(protocol.SuccessMark + response)
}

func (c *ConnectionHandler) dispatch(line string) (string, error) {
	cmd, err := protocol.Parse(line)
	if err != nil {
		return "", err
	}
	return c.api.Dispatch(cmd, c.uid, c.connID)
}

// applyJobs delivers every pending job for this identity in enqueue order.
func (c *ConnectionHandler) applyJobs() {
	jobs := c.reg.DrainJobs(c.uid)
	if jobs == nil {
		return
	}
	for _, job := range jobs {
		switch job.Kind {
		case model.JobSendMsg:
			c.sendLine(protocol.FormatDelivery(job))
		case model.JobExit:
			logger.InfoF("[%s] Exit job received, closing connection", c.displayName())
			c.sendLine("Bye")
			c.connected = false
		default:
			logger.ErrorF("[%s] Unhandled job kind %d", c.connID, job.Kind)
		}
	}
}

func (c *ConnectionHandler) sendLine(line string) {
	_ = send(c.conn, []byte(line+"\n"), c.connID)
}

func newConnectionHandler(conn Conn, connID string, uid uuid.UUID, a *api.API, reg *registry.Registry, silenceTimeout, haltInterval time.Duration) *ConnectionHandler {
	return &ConnectionHandler{
		conn:           conn,
		connID:         connID,
		uid:            uid,
		api:            a,
		reg:            reg,
		silenceTimeout: silenceTimeout,
		haltInterval:   haltInterval,
		connected:      true,
	}
}
