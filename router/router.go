package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-admin/controllers"
	"github.com/yeremiapane/restaurant-admin/hub"
	"github.com/yeremiapane/restaurant-admin/middlewares"
	"github.com/yeremiapane/restaurant-admin/models"
	"github.com/yeremiapane/restaurant-admin/services"
	"gorm.io/gorm"
)

type Deps struct {
	DB         *gorm.DB
	FloorPlan  *services.FloorPlanService
	Hub        *hub.Hub
	CORSOrigin string
	// RateLimit applies to every route when set.
	RateLimit *middlewares.RateLimiter
}

func SetupRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(deps.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())
	if deps.RateLimit != nil {
		r.Use(deps.RateLimit.RateLimit())
	}

	userCtrl := controllers.NewUserController(deps.DB)
	categoryCtrl := controllers.NewMenuCategoryController(deps.DB)
	menuCtrl := controllers.NewMenuController(deps.DB)
	floorCtrl := controllers.NewFloorPlanController(deps.FloorPlan)
	wsCtrl := controllers.NewFloorPlanWSController(deps.FloorPlan, deps.Hub)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter().RateLimit())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	r.GET("/categories", categoryCtrl.GetAllCategories)
	r.GET("/categories/:cat_id", categoryCtrl.GetCategoryByID)
	r.GET("/menus", menuCtrl.GetAllMenus)
	r.GET("/menus/by-category", menuCtrl.GetMenuByCategory)
	r.GET("/menus/:menu_id", menuCtrl.GetMenuByID)

	// Websocket handshakes carry the token in the query string.
	r.GET("/admin/floorplan/ws", middlewares.WebSocketAuthMiddleware(), wsCtrl.Stream)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/profile", userCtrl.GetProfile)
	auth.POST("/logout", userCtrl.Logout)
	auth.GET("/users", middlewares.RequireRole(models.RoleAdmin), userCtrl.GetAllUsers)
	auth.POST("/users", middlewares.RequireRole(models.RoleAdmin), userCtrl.AddUser)

	staff := auth.Group("")
	staff.Use(middlewares.RequireRole(models.RoleStaff))

	// MENU CATEGORIES
	staff.POST("/categories", categoryCtrl.CreateCategory)
	staff.PATCH("/categories/:cat_id", categoryCtrl.UpdateCategory)
	staff.DELETE("/categories/:cat_id", categoryCtrl.DeleteCategory)

	// MENUS
	staff.GET("/menus", menuCtrl.GetAllMenus)
	staff.POST("/menus", menuCtrl.CreateMenu)
	staff.GET("/menus/:menu_id", menuCtrl.GetMenuByID)
	staff.PATCH("/menus/:menu_id", menuCtrl.UpdateMenu)
	staff.DELETE("/menus/:menu_id", menuCtrl.DeleteMenu)

	// FLOOR PLAN
	floor := staff.Group("/floorplan")
	{
		floor.GET("", floorCtrl.GetFloorPlan)
		floor.GET("/tables", floorCtrl.GetAllTables)
		floor.POST("/tables", floorCtrl.CreateTable)
		floor.GET("/tables/:table_id", floorCtrl.GetTableByID)
		floor.PATCH("/tables/:table_id", floorCtrl.UpdateTable)
		floor.DELETE("/tables/:table_id", floorCtrl.DeleteTable)
		floor.POST("/selection", floorCtrl.SelectTable)
		floor.POST("/dialogs/:dialog", floorCtrl.OpenDialog)
		floor.DELETE("/dialogs", floorCtrl.CloseDialog)
		floor.POST("/pointer", floorCtrl.PointerEvent)
	}

	return r
}
