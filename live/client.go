package live

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client couples one websocket connection to a broadcaster subscription.
// The read pump owns teardown: when the peer goes away it unsubscribes,
// signals the write pump and closes the connection.
type Client struct {
	ID          string
	conn        *websocket.Conn
	broadcaster *Broadcaster
	matchIDs    []int
	events      chan Event
	done        chan struct{}
	logger      *slog.Logger
}

func NewClient(b *Broadcaster, conn *websocket.Conn, matchIDs []int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		ID:          uuid.NewString(),
		conn:        conn,
		broadcaster: b,
		matchIDs:    matchIDs,
		events:      b.Subscribe(matchIDs),
		done:        make(chan struct{}),
		logger:      logger,
	}
}

// ReadPump consumes (and discards) inbound frames so pong handling works
// and disconnects are noticed.
func (c *Client) ReadPump() {
	defer func() {
		c.broadcaster.Unsubscribe(c.events, c.matchIDs)
		close(c.done)
		c.conn.Close()
		c.logger.Debug("live client disconnected", slog.String("client_id", c.ID))
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("live client read error",
					slog.String("client_id", c.ID), slog.Any("error", err))
			}
			return
		}
	}
}

// WritePump forwards broadcaster events to the socket and keeps the
// connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev := <-c.events:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				c.logger.Warn("live client write error",
					slog.String("client_id", c.ID), slog.Any("error", err))
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
