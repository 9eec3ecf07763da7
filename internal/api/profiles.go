package api

import (
	"net/http"
	"strconv"

	"questlog/internal/service"
	"questlog/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type profileRoutes struct {
	ps     service.ProfileServiceI
	ledger service.LedgerI
	ws     service.WorkoutServiceI
}

func NewProfileRoutes(handler *gin.RouterGroup, ps service.ProfileServiceI, ledger service.LedgerI, ws service.WorkoutServiceI, a *auth.TelegramAuth) {
	r := &profileRoutes{ps: ps, ledger: ledger, ws: ws}
	h := handler.Group("/profiles")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.POST("", r.RegisterProfile)
		h.GET("/me", r.GetMyProfile)
		h.PUT("/me/workout-plan", r.SelectWorkoutPlan)
		h.GET("/me/xp-events", r.ListXPEvents)
	}
}

type RegisterProfileRequest struct {
	DisplayName string `json:"display_name"`
	Path        string `json:"path" binding:"required"`
}

func (r *profileRoutes) RegisterProfile(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}

	var req RegisterProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = user.DisplayName()
	}

	profile, err := r.ps.RegisterProfile(c.Request.Context(), user.ID, req.DisplayName, req.Path)
	if err != nil {
		respondError(c, "register profile", err)
		return
	}

	c.JSON(http.StatusCreated, newProfileResponse(profile))
}

func (r *profileRoutes) GetMyProfile(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}

	profile, err := r.ps.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, "get profile", err)
		return
	}

	c.JSON(http.StatusOK, newProfileResponse(profile))
}

type SelectWorkoutPlanRequest struct {
	PlanID uuid.UUID `json:"plan_id" binding:"required"`
}

func (r *profileRoutes) SelectWorkoutPlan(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}

	var req SelectWorkoutPlanRequest
	if !bindJSON(c, &req) {
		return
	}

	planID, err := r.ws.SelectWorkoutPlan(c.Request.Context(), user.ID, req.PlanID)
	if err != nil {
		respondError(c, "select workout plan", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"workout_plan_id": planID})
}

func (r *profileRoutes) ListXPEvents(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	events, err := r.ledger.History(c.Request.Context(), user.ID, limit)
	if err != nil {
		respondError(c, "list xp events", err)
		return
	}

	out := make([]XPEventResponse, len(events))
	for i, e := range events {
		out[i] = XPEventResponse{
			EventID:    e.EventID,
			SourceType: string(e.SourceType),
			SourceID:   e.SourceID,
			Amount:     e.Amount,
			CreatedAt:  e.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, out)
}
