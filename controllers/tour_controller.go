package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"travel-backend/middleware"
	"travel-backend/models"
	"travel-backend/services"

	"github.com/gin-gonic/gin"
)

type tourRequest struct {
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Destination services.DestinationRef `json:"destination"`
	StartDate   time.Time               `json:"start_date"`
	EndDate     time.Time               `json:"end_date"`
	Adults      int                     `json:"adults"`
	Children    int                     `json:"children"`
	Kids        int                     `json:"kids"`
}

// tourPatchRequest lists every tour field so that attempts to change the
// priced ones are reported instead of silently dropped.
type tourPatchRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	StartDate   *time.Time      `json:"start_date"`
	EndDate     *time.Time      `json:"end_date"`
	Destination json.RawMessage `json:"destination"`
	Adults      *int            `json:"adults"`
	Children    *int            `json:"children"`
	Kids        *int            `json:"kids"`
	Price       json.RawMessage `json:"price"`
}

type tourResponse struct {
	ID                  uint                `json:"id"`
	User                uint                `json:"user"`
	Title               string              `json:"title"`
	Description         string              `json:"description"`
	Destination         uint                `json:"destination"`
	DestinationDetails  destinationResponse `json:"destination_details"`
	StartDate           time.Time           `json:"start_date"`
	EndDate             time.Time           `json:"end_date"`
	Price               string              `json:"price"`
	PricedRates         rateSnapshotJSON    `json:"priced_rates"`
	TotalParticipants   int                 `json:"total_participants"`
	CurrentParticipants int                 `json:"current_participants"`
	Adults              int                 `json:"adults"`
	Children            int                 `json:"children"`
	Kids                int                 `json:"kids"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

type rateSnapshotJSON struct {
	AdultRate string `json:"adult_rate"`
	ChildRate string `json:"child_rate"`
	KidRate   string `json:"kid_rate"`
}

func toTourResponse(t *models.Tour) tourResponse {
	snap := t.PricedRates.Data()
	return tourResponse{
		ID:                 t.ID,
		User:               t.UserID,
		Title:              t.Title,
		Description:        t.Description,
		Destination:        t.DestinationID,
		DestinationDetails: toDestinationResponse(&t.Destination),
		StartDate:          t.StartDate,
		EndDate:            t.EndDate,
		Price:              t.Price.StringFixed(2),
		PricedRates: rateSnapshotJSON{
			AdultRate: snap.AdultRate.StringFixed(2),
			ChildRate: snap.ChildRate.StringFixed(2),
			KidRate:   snap.KidRate.StringFixed(2),
		},
		TotalParticipants:   t.TotalParticipants(),
		CurrentParticipants: t.CurrentParticipants,
		Adults:              t.Adults,
		Children:            t.Children,
		Kids:                t.Kids,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
}

type TourController struct {
	Tours *services.TourService
}

func NewTourController(svc *services.TourService) *TourController {
	return &TourController{Tours: svc}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, services.ErrTourNotFound)
		return 0, false
	}
	return uint(id), true
}

func (tc *TourController) List(c *gin.Context) {
	tours, err := tc.Tours.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]tourResponse, 0, len(tours))
	for i := range tours {
		out = append(out, toTourResponse(&tours[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (tc *TourController) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	tour, err := tc.Tours.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTourResponse(tour))
}

// Create books a tour for the caller. Price is always computed server-side.
func (tc *TourController) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, services.ErrTokenInvalid)
		return
	}
	var req tourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadPayload(c, err)
		return
	}

	tour, err := tc.Tours.Create(c.Request.Context(), user.ID, services.TourInput{
		Title:       req.Title,
		Description: req.Description,
		Destination: req.Destination,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Adults:      req.Adults,
		Children:    req.Children,
		Kids:        req.Kids,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTourResponse(tour))
}

func (tc *TourController) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, services.ErrTokenInvalid)
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req tourPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadPayload(c, err)
		return
	}

	var ve services.ValidationErrors
	if len(req.Destination) > 0 {
		ve.Add("destination", services.CodeReadOnly, "Destination cannot be changed after booking")
	}
	if req.Adults != nil {
		ve.Add("adults", services.CodeReadOnly, "Participants cannot be changed after booking")
	}
	if req.Children != nil {
		ve.Add("children", services.CodeReadOnly, "Participants cannot be changed after booking")
	}
	if req.Kids != nil {
		ve.Add("kids", services.CodeReadOnly, "Participants cannot be changed after booking")
	}
	if len(req.Price) > 0 {
		ve.Add("price", services.CodeReadOnly, "Price is computed and cannot be set")
	}
	if len(ve) > 0 {
		respondError(c, ve)
		return
	}

	tour, err := tc.Tours.Update(c.Request.Context(), user.ID, id, services.TourUpdate{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTourResponse(tour))
}

func (tc *TourController) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, services.ErrTokenInvalid)
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := tc.Tours.Delete(c.Request.Context(), user.ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
