package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-admin/models"
	"github.com/yeremiapane/restaurant-admin/utils"
	"gorm.io/gorm"
)

type MenuCategoryController struct {
	DB *gorm.DB
}

func NewMenuCategoryController(db *gorm.DB) *MenuCategoryController {
	return &MenuCategoryController{DB: db}
}

type categoryResponse struct {
	models.MenuCategory
	MenuCount int64 `json:"menu_count"`
}

// GetAllCategories lists categories by name with the number of menus in each.
func (mcc *MenuCategoryController) GetAllCategories(c *gin.Context) {
	var categories []models.MenuCategory
	if err := mcc.DB.Order("name").Find(&categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var counts []struct {
		CategoryID uint
		Total      int64
	}
	if err := mcc.DB.Model(&models.Menu{}).
		Select("category_id, COUNT(*) AS total").
		Group("category_id").
		Scan(&counts).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	byCategory := make(map[uint]int64, len(counts))
	for _, row := range counts {
		byCategory[row.CategoryID] = row.Total
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, cat := range categories {
		out = append(out, categoryResponse{MenuCategory: cat, MenuCount: byCategory[cat.ID]})
	}
	utils.RespondJSON(c, http.StatusOK, "All menu categories", out)
}

func (mcc *MenuCategoryController) CreateCategory(c *gin.Context) {
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var existing int64
	if err := mcc.DB.Model(&models.MenuCategory{}).Where("name = ?", body.Name).Count(&existing).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if existing > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("category already exists"))
		return
	}

	category := models.MenuCategory{
		Name: body.Name,
	}
	if err := mcc.DB.Create(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}

func (mcc *MenuCategoryController) GetCategoryByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("cat_id"))

	var category models.MenuCategory
	if err := mcc.DB.First(&category, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("category not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Category detail", category)
}

func (mcc *MenuCategoryController) UpdateCategory(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("cat_id"))

	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var category models.MenuCategory
	if err := mcc.DB.First(&category, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("category not found"))
		return
	}

	if body.Name != "" {
		category.Name = body.Name
	}

	if err := mcc.DB.Save(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Category updated", category)
}

// DeleteCategory refuses while menus still reference the category.
func (mcc *MenuCategoryController) DeleteCategory(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("cat_id"))

	var menus int64
	if err := mcc.DB.Model(&models.Menu{}).Where("category_id = ?", id).Count(&menus).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if menus > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("category still has menus"))
		return
	}

	result := mcc.DB.Delete(&models.MenuCategory{}, id)
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("category not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category deleted", gin.H{"category_id": id})
}
