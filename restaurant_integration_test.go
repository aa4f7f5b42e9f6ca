package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-admin/config"
	"github.com/yeremiapane/restaurant-admin/controllers"
	"github.com/yeremiapane/restaurant-admin/floorplan"
	"github.com/yeremiapane/restaurant-admin/hub"
	"github.com/yeremiapane/restaurant-admin/models"
	"github.com/yeremiapane/restaurant-admin/router"
	"github.com/yeremiapane/restaurant-admin/services"
	"github.com/yeremiapane/restaurant-admin/store"
	"github.com/yeremiapane/restaurant-admin/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// TestEndToEndIntegration walks the admin flow:
// 1. login as the seeded admin
// 2. add a table through the Add Table dialog
// 3. drag it to the far corner of the floor plan
// 4. mark it occupied and check the rendered view
// 5. restart the service from the database and find the same layout
func TestEndToEndIntegration(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db)
	r := router.SetupRouter(router.Deps{DB: db, FloorPlan: svc, Hub: hub.New(nil)})

	resp := call(t, r, http.MethodGet, "/admin/floorplan", "", nil)
	assert.False(t, resp.Status)

	token := loginTest(t, r)

	var table floorplan.Table
	resp = call(t, r, http.MethodPost, "/admin/floorplan/tables", token, map[string]interface{}{"seats": 4, "shape": "circle"})
	require.True(t, resp.Status, resp.Message)
	require.NoError(t, json.Unmarshal(resp.Data, &table))
	assert.Equal(t, 1, table.Number)

	container := map[string]interface{}{"left": 10, "top": 20, "width": 400, "height": 400}
	call(t, r, http.MethodPost, "/admin/floorplan/pointer", token, map[string]interface{}{
		"type": "down", "table_id": table.ID,
		"pointer":   map[string]interface{}{"x": 120, "y": 130},
		"container": container,
	})
	call(t, r, http.MethodPost, "/admin/floorplan/pointer", token, map[string]interface{}{
		"type": "move", "pointer": map[string]interface{}{"x": 900, "y": 900}, "container": container,
	})
	call(t, r, http.MethodPost, "/admin/floorplan/pointer", token, map[string]interface{}{"type": "leave"})

	resp = call(t, r, http.MethodPatch, "/admin/floorplan/tables/"+table.ID, token, map[string]interface{}{"status": "occupied"})
	require.True(t, resp.Status, resp.Message)

	var view floorplan.View
	resp = call(t, r, http.MethodGet, "/admin/floorplan", token, nil)
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	require.Len(t, view.Tables, 1)
	got := view.Tables[0]
	assert.Equal(t, 320.0, got.PositionX)
	assert.Equal(t, 320.0, got.PositionY)
	assert.Equal(t, floorplan.ColorRed, got.Treatment.Color)
	assert.Equal(t, floorplan.GeometryRound, got.Geometry)
	assert.Equal(t, floorplan.PhaseIdle, view.DragPhase)

	require.NoError(t, svc.Flush(context.Background()))
	restarted := newService(t, db)
	reloaded, ok := restarted.Get(table.ID)
	require.True(t, ok)
	assert.Equal(t, floorplan.StatusOccupied, reloaded.Status)
	assert.Equal(t, 320.0, reloaded.PositionX)
}

func TestStaffCannotListUsers(t *testing.T) {
	db := setupTestDB(t)
	r := router.SetupRouter(router.Deps{DB: db, FloorPlan: newService(t, db), Hub: hub.New(nil)})

	_, err := controllers.CreateUser(db, "Waiter", "staff@example.com", "secret123", models.RoleStaff)
	require.NoError(t, err)

	resp := call(t, r, http.MethodPost, "/login", "", map[string]string{"email": "staff@example.com", "password": "secret123"})
	require.True(t, resp.Status, resp.Message)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))

	resp = call(t, r, http.MethodGet, "/admin/users", data.Token, nil)
	assert.False(t, resp.Status)

	resp = call(t, r, http.MethodGet, "/admin/floorplan", data.Token, nil)
	assert.True(t, resp.Status)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.InitDB(config.Config{DBDriver: "sqlite", DBDSN: ":memory:"})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.AutoMigrate(db))

	_, err = controllers.CreateUser(db, "Test Admin", "admin@example.com", "secret123", models.RoleAdmin)
	require.NoError(t, err)
	return db
}

func newService(t *testing.T, db *gorm.DB) *services.FloorPlanService {
	t.Helper()
	svc := services.NewFloorPlanService(services.FloorPlanDeps{Store: store.NewFloorPlanStore(db)})
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func loginTest(t *testing.T, r http.Handler) string {
	t.Helper()
	resp := call(t, r, http.MethodPost, "/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "secret123",
	})
	require.True(t, resp.Status, resp.Message)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func call(t *testing.T, r http.Handler, method, path, token string, body interface{}) apiResponse {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}
