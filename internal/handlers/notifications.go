package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Windi-Fikriyansyah/contractpay_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/realtime"
)

const profileIDLocal = "ws_profile_id"

type NotificationHandler struct {
	Hub *realtime.Hub
	Log zerolog.Logger
}

// Upgrade runs after authentication and only lets websocket handshakes through.
func (h *NotificationHandler) Upgrade(c *fiber.Ctx) error {
	profile, found := middleware.Profile(c)
	if !found {
		return unauthorized(c)
	}
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	c.Locals(profileIDLocal, profile.ID)
	return c.Next()
}

// Stream pushes the caller's payment notifications until the socket closes.
func (h *NotificationHandler) Stream(c *websocket.Conn) {
	profileID, _ := c.Locals(profileIDLocal).(uuid.UUID)

	client := &realtime.Client{
		ID:        uuid.New().String(),
		ProfileID: profileID,
		Conn:      realtime.NewWebSocketConn(c),
		Send:      make(chan []byte, 256),
	}

	if !h.Hub.RegisterClient(client) {
		close(client.Send)
		return
	}
	defer h.Hub.UnregisterClient(client)

	go func() {
		for msg := range client.Send {
			if err := client.Conn.WriteText(msg); err != nil {
				h.Log.Debug().Err(err).Str("profile_id", profileID.String()).Msg("websocket write")
				return
			}
		}
	}()

	// drain reads to notice the close
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
