package server

import (
	"bufio"
	"context"
	"errors"
	"net"
	"time"

	"primecalc/go-server/internal/platform/ratelimiter"
	"primecalc/go-server/internal/protocol"
)

type greeting struct {
	Message  string `json:"message"`
	ClientID int64  `json:"client_id"`
}

// handleConn runs one session end to end. The exit path runs exactly once
// regardless of how the session terminates: completed counter up, active
// count down, connection released.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	id := s.clientSeq.Add(1)
	active := s.trackConn(conn, +1)
	s.metrics.SessionStarted()
	s.log.Info("client connected",
		"client_id", id,
		"remote", conn.RemoteAddr().String(),
		"active", active,
	)

	s.serveSession(ctx, conn, id)

	s.stats.IncrementCompletedClients()
	active = s.trackConn(conn, -1)
	s.metrics.SessionEnded()
	_ = conn.Close()
	s.log.Info("client disconnected", "client_id", id, "active", active)
}

// serveSession is the per-connection loop: read one frame, handle it, write
// one response. Requests are processed strictly in arrival order. A bad
// frame never ends the session; only peer close, an I/O failure, or server
// shutdown does.
func (s *Server) serveSession(ctx context.Context, conn net.Conn, id int64) {
	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	frame, err := protocol.EncodeResponse(greeting{Message: "connected", ClientID: id})
	if err != nil {
		return
	}
	if err := writeFrame(writer, frame); err != nil {
		return
	}

	limitKey := ratelimiter.KeyForRemote(conn.RemoteAddr().String())
	for {
		if ctx.Err() != nil {
			return
		}
		line, readErr := reader.ReadBytes('\n')
		if len(line) == 0 {
			return
		}
		if err := writeFrame(writer, s.handleFrame(line, limitKey)); err != nil {
			return
		}
		if readErr != nil {
			// The final bytes arrived without a newline; the peer is gone.
			return
		}
	}
}

// handleFrame turns one raw line into one response frame. Protocol and
// validation errors are reported to the client and recorded as last_error;
// anything unexpected is recorded and masked as a generic internal error.
func (s *Server) handleFrame(line []byte, limitKey string) []byte {
	if !s.limiter.Allow(limitKey, time.Now()) {
		return protocol.EncodeError("rate limit exceeded")
	}

	msg, err := protocol.Decode(line)
	if err != nil {
		s.stats.SetLastError(err.Error())
		return protocol.EncodeError(err.Error())
	}

	payload, err := s.dispatcher.Dispatch(msg)
	if err != nil {
		s.stats.SetLastError(err.Error())
		var perr *protocol.Error
		if errors.As(err, &perr) {
			return protocol.EncodeError(perr.Error())
		}
		s.log.Error("request failed", "command", msg.Command, "error", err)
		return protocol.EncodeError("internal server error")
	}

	frame, err := protocol.EncodeResponse(payload)
	if err != nil {
		s.stats.SetLastError(err.Error())
		s.log.Error("encode response failed", "command", msg.Command, "error", err)
		return protocol.EncodeError("internal server error")
	}
	return frame
}

func writeFrame(w *bufio.Writer, frame []byte) error {
	if _, err := w.Write(frame); err != nil {
		return err
	}
	return w.Flush()
}
