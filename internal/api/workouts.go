package api

import (
	"net/http"
	"time"

	"questlog/internal/model"
	"questlog/internal/service"
	"questlog/pkg/auth"

	"github.com/gin-gonic/gin"
)

type workoutRoutes struct {
	ws service.WorkoutServiceI
}

func NewWorkoutRoutes(handler *gin.RouterGroup, ws service.WorkoutServiceI, a *auth.TelegramAuth) {
	r := &workoutRoutes{ws: ws}
	h := handler.Group("/workouts")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.POST("/logs", r.LogWorkout)
		h.GET("/logs", r.ListLogs)
		h.GET("/plans", r.ListPlans)
	}
}

type LogWorkoutRequest struct {
	Date      string               `json:"date" binding:"required"`
	Completed bool                 `json:"completed"`
	Payload   model.WorkoutPayload `json:"payload"`
}

func (r *workoutRoutes) LogWorkout(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}

	var req LogWorkoutRequest
	if !bindJSON(c, &req) {
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	res, err := r.ws.LogWorkout(c.Request.Context(), user.ID, date, req.Completed, req.Payload)
	if err != nil {
		respondError(c, "log workout", err)
		return
	}

	c.JSON(http.StatusOK, WorkoutResultResponse{
		LogID:         res.LogID,
		AwardedXP:     res.AwardedXP,
		CurrentStreak: res.CurrentStreak,
		LongestStreak: res.LongestStreak,
		TotalXP:       res.TotalXP,
	})
}

func (r *workoutRoutes) ListLogs(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}

	var from, to time.Time
	for _, q := range []struct {
		name string
		dst  *time.Time
	}{{"from", &from}, {"to", &to}} {
		v := c.Query(q.name)
		if v == "" {
			continue
		}
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": q.name + " must be YYYY-MM-DD"})
			return
		}
		*q.dst = t
	}

	logs, err := r.ws.ListLogs(c.Request.Context(), user.ID, from, to)
	if err != nil {
		respondError(c, "list workout logs", err)
		return
	}

	out := make([]WorkoutLogResponse, len(logs))
	for i, l := range logs {
		out[i] = WorkoutLogResponse{
			LogID:     l.LogID,
			Date:      l.Date.Format(dateLayout),
			Completed: l.Completed,
			Payload:   l.Payload,
			UpdatedAt: l.UpdatedAt,
		}
	}

	c.JSON(http.StatusOK, out)
}

func (r *workoutRoutes) ListPlans(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}

	plans, err := r.ws.ListPlans(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, "list workout plans", err)
		return
	}

	out := make([]WorkoutPlanResponse, len(plans))
	for i, p := range plans {
		out[i] = newWorkoutPlanResponse(p)
	}

	c.JSON(http.StatusOK, out)
}
