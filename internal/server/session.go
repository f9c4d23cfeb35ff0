package server

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/lawnchairsociety/dragogauntlet/internal/game"
	"github.com/lawnchairsociety/dragogauntlet/internal/level"
	"github.com/lawnchairsociety/dragogauntlet/internal/logger"
	"github.com/lawnchairsociety/dragogauntlet/internal/stage"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// serverMessage is pushed to the renderer.
type serverMessage struct {
	Type  string          `json:"type"`
	Level *level.Document `json:"level,omitempty"`
	Frame *game.Snapshot  `json:"frame,omitempty"`
}

// clientMessage is sent by the renderer. Only "input" is understood.
type clientMessage struct {
	Type     string `json:"type"`
	DX       int    `json:"dx"`
	DY       int    `json:"dy"`
	Shoot    bool   `json:"shoot"`
	Fireball bool   `json:"fireball"`
}

func (m clientMessage) input() stage.Input {
	return stage.Input{DX: clamp(m.DX), DY: clamp(m.DY), Shoot: m.Shoot, Fireball: m.Fireball}
}

func clamp(v int) int {
	return max(-1, min(1, v))
}

// session pairs one game socket with a game subscription.
type session struct {
	conn    *websocket.Conn
	game    Game
	ip      string
	maxSize int64

	events <-chan game.Event
	cancel func()
}

func newSession(conn *websocket.Conn, g Game, ip string, maxSize int64) *session {
	events, cancel := g.Subscribe()
	return &session{conn: conn, game: g, ip: ip, maxSize: maxSize, events: events, cancel: cancel}
}

// run blocks until the client goes away. The current level is sent first
// so a client joining mid-level can draw.
func (s *session) run() {
	log := logger.With("session")
	log.Info("Session opened", "client_ip", s.ip)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.writePump()
	}()

	s.readPump()
	s.cancel()
	<-done
	log.Info("Session closed", "client_ip", s.ip)
}

func (s *session) readPump() {
	s.conn.SetReadLimit(s.maxSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg clientMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warning("Session read failed", "client_ip", s.ip, "error", err)
			}
			return
		}
		switch msg.Type {
		case "input":
			s.game.Input(msg.input())
		default:
			logger.Debug("Ignoring client message", "client_ip", s.ip, "type", msg.Type)
		}
	}
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	hello := serverMessage{Type: game.EventLevel, Level: s.game.LevelDocument(), Frame: s.game.Snapshot()}
	if err := s.write(hello); err != nil {
		return
	}

	for {
		select {
		case ev, ok := <-s.events:
			if !ok {
				s.conn.SetWriteDeadline(time.Now().Add(writeWait))
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.write(serverMessage{Type: ev.Type, Level: ev.Level, Frame: ev.Frame}); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *session) write(msg serverMessage) error {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(msg); err != nil {
		logger.Debug("Session write failed", "client_ip", s.ip, "error", err)
		return err
	}
	return nil
}
