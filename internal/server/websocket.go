package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zeusync/motiontrack/internal/core/motion"
	"github.com/zeusync/motiontrack/internal/core/observability/log"
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// Frame is one message of the snapshot stream.
type Frame struct {
	Sequence uint64            `json:"seq"`
	Time     time.Time         `json:"time"`
	Entities []motion.Snapshot `json:"entities"`
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}
	if !s.addClient(conn) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}

	remote := conn.RemoteAddr().String()
	s.logger.Debug("stream client connected", log.String("remote", remote))

	go s.stream(conn, remote)
}

// stream pushes a frame every StreamInterval until the client leaves or the server stops.
func (s *Server) stream(conn *websocket.Conn, remote string) {
	defer s.removeClient(conn)
	defer conn.Close()

	// the read loop only exists to notice the client going away
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.config.StreamInterval)
	defer ticker.Stop()

	var seq uint64
	send := func() bool {
		seq++
		frame := Frame{Sequence: seq, Time: time.Now().UTC(), Entities: s.registry.Snapshots()}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(frame); err != nil {
			s.logger.Debug("stream write failed", log.String("remote", remote), log.Error(err))
			return false
		}
		return true
	}

	if !send() {
		return
	}
	for {
		select {
		case <-s.stopCh:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(writeWait))
			return
		case <-gone:
			s.logger.Debug("stream client disconnected", log.String("remote", remote))
			return
		case <-ticker.C:
			if !send() {
				return
			}
		}
	}
}
