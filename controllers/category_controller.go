package controllers

import (
	"net/http"

	"travel-backend/services"

	"github.com/gin-gonic/gin"
)

type categoryRequest struct {
	Name        string  `json:"name"`
	CustomName  *string `json:"custom_name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
}

func (r categoryRequest) input() services.CategoryInput {
	return services.CategoryInput{
		Name:        r.Name,
		CustomName:  r.CustomName,
		Slug:        r.Slug,
		Description: r.Description,
	}
}

type CategoryController struct {
	Categories *services.CategoryService
}

func NewCategoryController(svc *services.CategoryService) *CategoryController {
	return &CategoryController{Categories: svc}
}

func (cc *CategoryController) List(c *gin.Context) {
	cats, err := cc.Categories.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

func (cc *CategoryController) Get(c *gin.Context) {
	cat, err := cc.Categories.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (cc *CategoryController) Create(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadPayload(c, err)
		return
	}
	cat, err := cc.Categories.Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (cc *CategoryController) Update(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadPayload(c, err)
		return
	}
	cat, err := cc.Categories.Update(c.Request.Context(), c.Param("slug"), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (cc *CategoryController) Delete(c *gin.Context) {
	if err := cc.Categories.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
