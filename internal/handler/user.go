package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	authService *service.AuthService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *service.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// UserResponse is the HTTP response for user data. Uploaded documents are
// never echoed back.
type UserResponse struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email,omitempty"`
	Type         string  `json:"type"`
	ProfileImage string  `json:"profile_image"`
	CarImage     string  `json:"car_image,omitempty"`
	Rating       float64 `json:"rating"`
	TripCount    int     `json:"trip_count"`
	JoinDate     string  `json:"join_date"`
}

// ProfileResponse is a user together with their trip activity.
type ProfileResponse struct {
	UserResponse
	TripsOffered int `json:"trips_offered"`
	TripsTaken   int `json:"trips_taken"`
}

func toUserResponse(u *domain.User, withEmail bool) UserResponse {
	resp := UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Type:         string(u.Type),
		ProfileImage: u.ProfileImage,
		CarImage:     u.CarImage,
		Rating:       u.Rating,
		TripCount:    u.TripCount,
		JoinDate:     u.JoinDate,
	}
	if withEmail {
		resp.Email = u.Email
	}
	return resp
}

// GetAll handles GET /v1/users
func (h *UserHandler) GetAll(c *gin.Context) {
	users, err := h.authService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, toUserResponse(u, false))
	}

	respondJSON(c, http.StatusOK, response)
}

// GetUser handles GET /v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	profile, err := h.authService.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, ProfileResponse{
		UserResponse: toUserResponse(profile.User, false),
		TripsOffered: profile.TripsOffered,
		TripsTaken:   profile.TripsTaken,
	})
}
