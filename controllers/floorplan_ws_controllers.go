package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-admin/floorplan"
	"github.com/yeremiapane/restaurant-admin/hub"
	"github.com/yeremiapane/restaurant-admin/models"
	"github.com/yeremiapane/restaurant-admin/services"
	"github.com/yeremiapane/restaurant-admin/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type FloorPlanWSController struct {
	Service *services.FloorPlanService
	Hub     *hub.Hub
}

func NewFloorPlanWSController(svc *services.FloorPlanService, h *hub.Hub) *FloorPlanWSController {
	return &FloorPlanWSController{Service: svc, Hub: h}
}

// Stream -> websocket endpoint. Inbound frames are pointer events, outbound
// frames are hub broadcasts. When a connection that pressed a table drops
// mid-drag, that drag is released; other clients' drags are left alone.
func (wc *FloorPlanWSController) Stream(c *gin.Context) {
	roleInterface, exists := c.Get("role")
	if !exists {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	role, _ := roleInterface.(string)
	if role != models.RoleAdmin && role != models.RoleStaff {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("websocket upgrade: %v", err)
		return
	}

	wc.Hub.Register(ws, role)
	ctx := c.Request.Context()

	// table this connection pressed and has not released yet
	pressed := ""
	defer func() {
		if pressed != "" && wc.Service.ReleaseDragOf(ctx, pressed) {
			utils.InfoLogger.Printf("Released drag of table %s after client disconnect", pressed)
		}
		wc.Hub.Unregister(ws)
	}()

	for {
		var ev floorplan.PointerEvent
		if err := ws.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				utils.ErrorLogger.Printf("websocket read: %v", err)
			}
			return
		}
		if _, err := wc.Service.Pointer(ctx, ev); err != nil {
			utils.InfoLogger.Debugf("pointer event %q ignored: %v", ev.Type, err)
			continue
		}
		switch ev.Type {
		case floorplan.PointerDown:
			pressed = ev.TableID
		case floorplan.PointerUp, floorplan.PointerLeave:
			pressed = ""
		}
	}
}
