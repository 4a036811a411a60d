package ws

import (
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades GET /events/:id/queue/ws to a WebSocket subscription for
// that event's queue snapshots.
func Handler(hub *Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			return err
		}

		client := &Client{
			hub:     hub,
			conn:    conn,
			send:    make(chan []byte, 16),
			eventID: uint(eventID),
		}
		hub.register <- client

		go client.writePump()
		go client.readPump()
		return nil
	}
}
