package api

import (
	"net/http"

	"questlog/internal/middleware"
	"questlog/internal/model"
	"questlog/internal/service"
	"questlog/pkg/auth"

	"github.com/gin-gonic/gin"
)

type adminRoutes struct {
	qs     service.QuestServiceI
	ws     service.WorkoutServiceI
	ledger service.LedgerI
}

func NewAdminRoutes(handler *gin.RouterGroup, qs service.QuestServiceI, ws service.WorkoutServiceI, ledger service.LedgerI, a *auth.TelegramAuth, authz *middleware.Authorization) {
	r := &adminRoutes{qs: qs, ws: ws, ledger: ledger}
	h := handler.Group("/admin")
	h.Use(a.TelegramAuthMiddleware(), authz.AdminOnly())
	{
		h.POST("/quests", r.CreateQuest)
		h.POST("/workout-plans", r.CreateWorkoutPlan)
		h.POST("/profiles/:user_id/reconcile", r.Reconcile)
	}
}

type CreateQuestRequest struct {
	Path       string `json:"path" binding:"required"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Title      string `json:"title" binding:"required"`
	XPReward   int    `json:"xp_reward" binding:"required"`
	IsActive   *bool  `json:"is_active"`
}

func (r *adminRoutes) CreateQuest(c *gin.Context) {
	var req CreateQuestRequest
	if !bindJSON(c, &req) {
		return
	}

	active := req.IsActive == nil || *req.IsActive

	quest, err := r.qs.CreateQuest(c.Request.Context(), &model.QuestDefinition{
		Path:       req.Path,
		Category:   req.Category,
		Difficulty: req.Difficulty,
		Title:      req.Title,
		XPReward:   req.XPReward,
		IsActive:   active,
	})
	if err != nil {
		respondError(c, "create quest", err)
		return
	}

	c.JSON(http.StatusCreated, newQuestResponse(quest))
}

type CreateWorkoutPlanRequest struct {
	Path     string `json:"path" binding:"required"`
	Title    string `json:"title" binding:"required"`
	IsActive *bool  `json:"is_active"`
}

func (r *adminRoutes) CreateWorkoutPlan(c *gin.Context) {
	var req CreateWorkoutPlanRequest
	if !bindJSON(c, &req) {
		return
	}

	plan, err := r.ws.CreatePlan(c.Request.Context(), &model.WorkoutPlan{
		Path:     req.Path,
		Title:    req.Title,
		IsActive: req.IsActive == nil || *req.IsActive,
	})
	if err != nil {
		respondError(c, "create workout plan", err)
		return
	}

	c.JSON(http.StatusCreated, newWorkoutPlanResponse(plan))
}

func (r *adminRoutes) Reconcile(c *gin.Context) {
	userID, ok := int64Param(c, "user_id")
	if !ok {
		return
	}

	rec, err := r.ledger.Reconcile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "reconcile", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":  rec.UserID,
		"previous": rec.Previous,
		"rebuilt":  rec.Rebuilt,
		"drifted":  rec.Previous != rec.Rebuilt,
	})
}
