package controllers

import (
	"net/http"
	"time"

	"travel-backend/models"
	"travel-backend/services"

	"github.com/gin-gonic/gin"
)

type destinationRequest struct {
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Category    uint     `json:"category"`
	City        string   `json:"city"`
	Address     string   `json:"address"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

type destinationResponse struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	Category     uint      `json:"category"`
	CategoryName string    `json:"category_name"`
	City         string    `json:"city"`
	Address      string    `json:"address"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
	HasRates     bool      `json:"has_rates"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toDestinationResponse(d *models.Destination) destinationResponse {
	return destinationResponse{
		ID:           d.ID,
		Name:         d.Name,
		Slug:         d.Slug,
		Description:  d.Description,
		Category:     d.CategoryID,
		CategoryName: d.Category.Name,
		City:         d.City,
		Address:      d.Address,
		Latitude:     d.Latitude,
		Longitude:    d.Longitude,
		HasRates:     d.Rate != nil,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (r destinationRequest) input() services.DestinationInput {
	return services.DestinationInput{
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		CategoryID:  r.Category,
		City:        r.City,
		Address:     r.Address,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
	}
}

type DestinationController struct {
	Destinations *services.DestinationService
}

func NewDestinationController(svc *services.DestinationService) *DestinationController {
	return &DestinationController{Destinations: svc}
}

// List supports ?category=<slug>, ?city= and ?search=.
func (dc *DestinationController) List(c *gin.Context) {
	dests, err := dc.Destinations.List(c.Request.Context(), services.DestinationFilter{
		Category: c.Query("category"),
		City:     c.Query("city"),
		Search:   c.Query("search"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]destinationResponse, 0, len(dests))
	for i := range dests {
		out = append(out, toDestinationResponse(&dests[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (dc *DestinationController) Get(c *gin.Context) {
	dest, err := dc.Destinations.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDestinationResponse(dest))
}

func (dc *DestinationController) Create(c *gin.Context) {
	var req destinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadPayload(c, err)
		return
	}
	dest, err := dc.Destinations.Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toDestinationResponse(dest))
}

func (dc *DestinationController) Update(c *gin.Context) {
	var req destinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadPayload(c, err)
		return
	}
	dest, err := dc.Destinations.Update(c.Request.Context(), c.Param("slug"), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDestinationResponse(dest))
}

func (dc *DestinationController) Delete(c *gin.Context) {
	if err := dc.Destinations.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
