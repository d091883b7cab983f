package controllers

import (
	"net/http"
	"time"

	"travel-backend/models"
	"travel-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// rateRequest accepts each rate as a JSON number or decimal string.
type rateRequest struct {
	AdultRate *decimal.Decimal `json:"adult_rate" binding:"required"`
	ChildRate *decimal.Decimal `json:"child_rate" binding:"required"`
	KidRate   *decimal.Decimal `json:"kid_rate" binding:"required"`
}

type rateResponse struct {
	ID          uint      `json:"id"`
	Destination uint      `json:"destination"`
	AdultRate   string    `json:"adult_rate"`
	ChildRate   string    `json:"child_rate"`
	KidRate     string    `json:"kid_rate"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toRateResponse(r *models.DestinationRate) rateResponse {
	return rateResponse{
		ID:          r.ID,
		Destination: r.DestinationID,
		AdultRate:   r.AdultRate.StringFixed(2),
		ChildRate:   r.ChildRate.StringFixed(2),
		KidRate:     r.KidRate.StringFixed(2),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type RateController struct {
	Rates *services.RateService
}

func NewRateController(svc *services.RateService) *RateController {
	return &RateController{Rates: svc}
}

func (rc *RateController) Get(c *gin.Context) {
	rate, err := rc.Rates.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRateResponse(rate))
}

// Put creates the rate card (201) or replaces it (200).
func (rc *RateController) Put(c *gin.Context) {
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadPayload(c, err)
		return
	}

	rate, created, err := rc.Rates.Put(c.Request.Context(), c.Param("slug"), services.RateInput{
		AdultRate: *req.AdultRate,
		ChildRate: *req.ChildRate,
		KidRate:   *req.KidRate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, toRateResponse(rate))
}
