package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-admin/floorplan"
	"github.com/yeremiapane/restaurant-admin/services"
	"github.com/yeremiapane/restaurant-admin/utils"
)

type FloorPlanController struct {
	Service *services.FloorPlanService
}

func NewFloorPlanController(svc *services.FloorPlanService) *FloorPlanController {
	return &FloorPlanController{Service: svc}
}

// GetFloorPlan -> rendered floor plan (tables, treatments, selection, drag phase)
func (fc *FloorPlanController) GetFloorPlan(c *gin.Context) {
	view, err := fc.Service.ViewJSON(c.Request.Context())
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Floor plan", json.RawMessage(view))
}

// GetAllTables -> raw table records in insertion order
func (fc *FloorPlanController) GetAllTables(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "List of tables", fc.Service.Tables())
}

func (fc *FloorPlanController) GetTableByID(c *gin.Context) {
	table, ok := fc.Service.Get(c.Param("table_id"))
	if !ok {
		utils.RespondError(c, http.StatusNotFound, floorplan.ErrTableNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// CreateTable -> Add Table dialog submit
func (fc *FloorPlanController) CreateTable(c *gin.Context) {
	var draft floorplan.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := fc.Service.Add(c.Request.Context(), draft)
	if err != nil {
		respondFloorPlanError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// UpdateTable -> Edit Table dialog submit for :table_id
func (fc *FloorPlanController) UpdateTable(c *gin.Context) {
	var patch floorplan.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := fc.Service.Update(c.Request.Context(), c.Param("table_id"), patch)
	if err != nil {
		respondFloorPlanError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

func (fc *FloorPlanController) DeleteTable(c *gin.Context) {
	table, err := fc.Service.Delete(c.Request.Context(), c.Param("table_id"))
	if err != nil {
		respondFloorPlanError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{
		"id":     table.ID,
		"number": table.Number,
	})
}

// SelectTable -> body {"table_id": "..."}; null or empty deselects
func (fc *FloorPlanController) SelectTable(c *gin.Context) {
	var body struct {
		TableID *string `json:"table_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	id := ""
	if body.TableID != nil {
		id = *body.TableID
	}
	if err := fc.Service.Select(c.Request.Context(), id); err != nil {
		respondFloorPlanError(c, err)
		return
	}
	selected, _ := fc.Service.SelectedTable()
	if id == "" {
		utils.RespondJSON(c, http.StatusOK, "Selection cleared", nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table selected", selected)
}

func (fc *FloorPlanController) OpenDialog(c *gin.Context) {
	dialog, err := floorplan.ParseDialog(c.Param("dialog"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := fc.Service.OpenDialog(c.Request.Context(), dialog); err != nil {
		respondFloorPlanError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dialog opened", gin.H{"dialog": dialog})
}

func (fc *FloorPlanController) CloseDialog(c *gin.Context) {
	fc.Service.CloseDialog(c.Request.Context())
	utils.RespondJSON(c, http.StatusOK, "Dialog closed", nil)
}

// PointerEvent -> one down/move/up/leave event from the floor-plan surface
func (fc *FloorPlanController) PointerEvent(c *gin.Context) {
	var ev floorplan.PointerEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	moved, err := fc.Service.Pointer(c.Request.Context(), ev)
	if err != nil {
		respondFloorPlanError(c, err)
		return
	}

	view := fc.Service.View()
	utils.RespondJSON(c, http.StatusOK, "Pointer event applied", gin.H{
		"moved":      moved,
		"drag_phase": view.DragPhase,
	})
}

func respondFloorPlanError(c *gin.Context, err error) {
	var verr *floorplan.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.RespondErrorData(c, http.StatusBadRequest, err, verr.Fields)
	case errors.Is(err, floorplan.ErrTableNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, floorplan.ErrNoSelection):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, floorplan.ErrUnknownPointerEvent), errors.Is(err, floorplan.ErrUnknownDialog):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, floorplan.ErrDuplicateID):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.ErrorLogger.Printf("floor plan: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
