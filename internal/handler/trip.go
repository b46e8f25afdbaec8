package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// TripResponse is the HTTP response for trip operations.
type TripResponse struct {
	ID             string   `json:"id"`
	DriverID       string   `json:"driver_id"`
	DriverName     string   `json:"driver_name"`
	DriverRating   float64  `json:"driver_rating"`
	Origin         string   `json:"origin"`
	Destination    string   `json:"destination"`
	Date           string   `json:"date"`
	Time           string   `json:"time"`
	Seats          int      `json:"seats"`
	AvailableSeats int      `json:"available_seats"`
	Passengers     []string `json:"passengers"`
	CarModel       string   `json:"car_model"`
	CarColor       string   `json:"car_color"`
	CarImage       string   `json:"car_image"`
}

// RosterResponse is returned by join and leave. Changed is false when the
// request did not alter the roster.
type RosterResponse struct {
	Changed bool         `json:"changed"`
	Trip    TripResponse `json:"trip"`
}

// CreateTripRequest is the HTTP request body for publishing a trip.
type CreateTripRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Seats       int    `json:"seats"`
	CarModel    string `json:"car_model"`
	CarColor    string `json:"car_color"`
	CarImage    string `json:"car_image"`
}

// UpdateTripRequest is the HTTP request body for editing a trip. Omitted
// fields are left unchanged.
type UpdateTripRequest struct {
	Origin      *string `json:"origin"`
	Destination *string `json:"destination"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Seats       *int    `json:"seats"`
	CarModel    *string `json:"car_model"`
	CarColor    *string `json:"car_color"`
	CarImage    *string `json:"car_image"`
}

func toTripResponse(t *domain.Trip) TripResponse {
	passengers := t.Passengers
	if passengers == nil {
		passengers = []string{}
	}
	return TripResponse{
		ID:             t.ID,
		DriverID:       t.DriverID,
		DriverName:     t.DriverName,
		DriverRating:   t.DriverRating,
		Origin:         t.Origin,
		Destination:    t.Destination,
		Date:           t.Date,
		Time:           t.Time,
		Seats:          t.Seats,
		AvailableSeats: t.AvailableSeats(),
		Passengers:     passengers,
		CarModel:       t.CarModel,
		CarColor:       t.CarColor,
		CarImage:       t.CarImage,
	}
}

func toTripResponses(trips []*domain.Trip) []TripResponse {
	response := make([]TripResponse, 0, len(trips))
	for _, t := range trips {
		response = append(response, toTripResponse(t))
	}
	return response
}

// GetAll handles GET /v1/trips
// With origin, destination or date query parameters it searches instead,
// returning only trips with free seats.
func (h *TripHandler) GetAll(c *gin.Context) {
	filter := domain.TripFilter{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
		Date:        c.Query("date"),
	}

	var (
		trips []*domain.Trip
		err   error
	)
	if filter.IsEmpty() {
		trips, err = h.tripService.ListTrips(c.Request.Context())
	} else {
		trips, err = h.tripService.SearchTrips(c.Request.Context(), filter)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponses(trips))
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// CreateTrip handles POST /v1/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.CreateTrip(c.Request.Context(), service.CreateTripRequest{
		DriverID:    user.ID,
		Origin:      req.Origin,
		Destination: req.Destination,
		Date:        req.Date,
		Time:        req.Time,
		Seats:       req.Seats,
		CarModel:    req.CarModel,
		CarColor:    req.CarColor,
		CarImage:    req.CarImage,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toTripResponse(trip))
}

// UpdateTrip handles PATCH /v1/trips/:id
func (h *TripHandler) UpdateTrip(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req UpdateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.UpdateTrip(c.Request.Context(), service.UpdateTripRequest{
		TripID:  c.Param("id"),
		ActorID: user.ID,
		Update: domain.TripUpdate{
			Origin:      req.Origin,
			Destination: req.Destination,
			Date:        req.Date,
			Time:        req.Time,
			Seats:       req.Seats,
			CarModel:    req.CarModel,
			CarColor:    req.CarColor,
			CarImage:    req.CarImage,
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// DeleteTrip handles DELETE /v1/trips/:id
func (h *TripHandler) DeleteTrip(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	err := h.tripService.DeleteTrip(c.Request.Context(), service.DeleteTripRequest{
		TripID:  c.Param("id"),
		ActorID: user.ID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// JoinTrip handles POST /v1/trips/:id/join
func (h *TripHandler) JoinTrip(c *gin.Context) {
	h.roster(c, h.tripService.JoinTrip)
}

// LeaveTrip handles POST /v1/trips/:id/leave
func (h *TripHandler) LeaveTrip(c *gin.Context) {
	h.roster(c, h.tripService.LeaveTrip)
}

func (h *TripHandler) roster(c *gin.Context, op func(ctx context.Context, req service.RosterRequest) (*service.RosterResult, error)) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := op(c.Request.Context(), service.RosterRequest{
		TripID: c.Param("id"),
		UserID: user.ID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, RosterResponse{
		Changed: result.Changed,
		Trip:    toTripResponse(result.Trip),
	})
}

// MyTrips handles GET /v1/me/trips
func (h *TripHandler) MyTrips(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	trips, err := h.tripService.UserTrips(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponses(trips))
}
