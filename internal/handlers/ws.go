package handlers

import (
	"log"
	"net/http"

	"github.com/wl39/todo-sync/internal/auth"
	"github.com/wl39/todo-sync/internal/service"
	"github.com/wl39/todo-sync/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are already wide open at the CORS layer.
	CheckOrigin: func(*http.Request) bool { return true },
}

// WSHandler upgrades live-connection requests and binds them to their
// channel. Authorization happens before the upgrade: a rejected handshake is
// a plain HTTP error.
type WSHandler struct {
	manager  *ws.Manager
	shareSvc *service.ShareService
}

// NewWSHandler returns a new WSHandler.
func NewWSHandler(manager *ws.Manager, shareSvc *service.ShareService) *WSHandler {
	return &WSHandler{manager: manager, shareSvc: shareSvc}
}

// User godoc
// @Summary      Live feed of the caller's own todos
// @Tags         websocket
// @Security     BearerAuth
// @Success      101
// @Failure      401  {object}  map[string]string
// @Router       /ws/user [get]
func (h *WSHandler) User(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	h.serve(c, ws.UserChannel(userID))
}

// Public godoc
// @Summary      Live feed of a public calendar
// @Tags         websocket
// @Param        slug  path  string  true  "Share slug"
// @Success      101
// @Failure      404  {object}  map[string]string
// @Router       /public/ws/{slug} [get]
func (h *WSHandler) Public(c *gin.Context) {
	slug := c.Param("slug")
	if _, err := h.shareSvc.Resolve(c.Request.Context(), slug); err != nil {
		writeServiceError(c, err)
		return
	}
	h.serve(c, ws.CalendarChannel(slug))
}

func (h *WSHandler) serve(c *gin.Context, channel string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		log.Printf("ws: upgrade failed on %s: %v", channel, err)
		return
	}
	ws.NewClient(conn).Run(h.manager, channel)
}
