package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-admin/models"
	"github.com/yeremiapane/restaurant-admin/utils"
	"gorm.io/gorm"
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

type menuResponse struct {
	models.Menu
	PriceLabel string `json:"price_label"`
}

func toMenuResponse(m models.Menu) menuResponse {
	return menuResponse{Menu: m, PriceLabel: utils.FormatPrice(m.Price)}
}

func toMenuResponses(menus []models.Menu) []menuResponse {
	out := make([]menuResponse, 0, len(menus))
	for _, m := range menus {
		out = append(out, toMenuResponse(m))
	}
	return out
}

type menuRequest struct {
	CategoryID  uint     `json:"category_id" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       *float64 `json:"price" binding:"required"`
	ImageURL    string   `json:"image_url"`
}

// GetAllMenus -> optional ?category=<id> and ?q=<text> filters
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	query := mc.DB.Preload("Category").Order("id")

	if categoryIDStr := c.Query("category"); categoryIDStr != "" {
		categoryID, err := strconv.Atoi(categoryIDStr)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid category ID"))
			return
		}
		query = query.Where("category_id = ?", categoryID)
	}

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var menus []models.Menu
	if err := query.Find(&menus).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of menus", toMenuResponses(menus))
}

func (mc *MenuController) CreateMenu(c *gin.Context) {
	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if *req.Price < 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("price must not be negative"))
		return
	}

	var category models.MenuCategory
	if err := mc.DB.First(&category, req.CategoryID).Error; err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid category_id"))
		return
	}

	menu := models.Menu{
		CategoryID:  req.CategoryID,
		Category:    category,
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		ImageURL:    req.ImageURL,
	}
	if err := mc.DB.Omit("Category").Create(&menu).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Menu created", toMenuResponse(menu))
}

func (mc *MenuController) GetMenuByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("menu_id"))

	var menu models.Menu
	if err := mc.DB.Preload("Category").First(&menu, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menu detail", toMenuResponse(menu))
}

// GetMenuByCategory
// Endpoint: GET /menus/by-category?category=<id kategori>
func (mc *MenuController) GetMenuByCategory(c *gin.Context) {
	categoryIDStr := c.Query("category")
	if categoryIDStr == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("query parameter 'category' is required"))
		return
	}

	categoryID, err := strconv.Atoi(categoryIDStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid category ID"))
		return
	}

	var menus []models.Menu
	if err := mc.DB.Preload("Category").
		Where("category_id = ?", categoryID).
		Order("id").
		Find(&menus).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, fmt.Sprintf("List of menus for category ID: %d", categoryID), toMenuResponses(menus))
}

func (mc *MenuController) UpdateMenu(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("menu_id"))

	var req struct {
		CategoryID  *uint    `json:"category_id"`
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
		ImageURL    *string  `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var menu models.Menu
	if err := mc.DB.First(&menu, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu not found"))
		return
	}

	if req.CategoryID != nil {
		var category models.MenuCategory
		if err := mc.DB.First(&category, *req.CategoryID).Error; err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid category_id"))
			return
		}
		menu.CategoryID = category.ID
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			utils.RespondError(c, http.StatusBadRequest, errors.New("name must not be empty"))
			return
		}
		menu.Name = *req.Name
	}
	if req.Description != nil {
		menu.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("price must not be negative"))
			return
		}
		menu.Price = *req.Price
	}
	if req.ImageURL != nil {
		menu.ImageURL = *req.ImageURL
	}

	if err := mc.DB.Omit("Category").Save(&menu).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	mc.DB.Preload("Category").First(&menu, menu.ID)

	utils.RespondJSON(c, http.StatusOK, "Menu updated successfully", toMenuResponse(menu))
}

func (mc *MenuController) DeleteMenu(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("menu_id"))

	result := mc.DB.Delete(&models.Menu{}, id)
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu deleted", gin.H{"menu_id": id})
}
