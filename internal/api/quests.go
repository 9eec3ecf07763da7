package api

import (
	"net/http"

	"questlog/internal/model"
	"questlog/internal/service"
	"questlog/pkg/auth"

	"github.com/gin-gonic/gin"
)

type questRoutes struct {
	qs service.QuestServiceI
}

func NewQuestRoutes(handler *gin.RouterGroup, qs service.QuestServiceI, a *auth.TelegramAuth) {
	r := &questRoutes{qs: qs}
	h := handler.Group("/quests")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.GET("", r.ListQuests)
		h.POST("/:quest_id/select", r.SelectQuest)
		h.GET("/assignments", r.ListAssignments)
		h.POST("/assignments/:assignment_id/complete", r.CompleteQuest)
	}
}

func (r *questRoutes) ListQuests(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}

	quests, err := r.qs.ListQuests(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, "list quests", err)
		return
	}

	out := make([]QuestResponse, len(quests))
	for i, q := range quests {
		out[i] = newQuestResponse(q)
	}

	c.JSON(http.StatusOK, out)
}

func (r *questRoutes) SelectQuest(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	questID, ok := uuidParam(c, "quest_id")
	if !ok {
		return
	}

	assignment, err := r.qs.SelectQuest(c.Request.Context(), user.ID, questID)
	if err != nil {
		respondError(c, "select quest", err)
		return
	}

	c.JSON(http.StatusOK, newAssignmentResponse(assignment))
}

func (r *questRoutes) ListAssignments(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}

	status := model.AssignmentStatus(c.Query("status"))

	assignments, err := r.qs.ListAssignments(c.Request.Context(), user.ID, status)
	if err != nil {
		respondError(c, "list assignments", err)
		return
	}

	out := make([]AssignmentResponse, len(assignments))
	for i, a := range assignments {
		out[i] = newAssignmentResponse(a)
	}

	c.JSON(http.StatusOK, out)
}

type CompleteQuestRequest struct {
	Note string `json:"note"`
}

func (r *questRoutes) CompleteQuest(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	assignmentID, ok := uuidParam(c, "assignment_id")
	if !ok {
		return
	}

	// The body is optional.
	var req CompleteQuestRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	res, err := r.qs.CompleteQuest(c.Request.Context(), user.ID, assignmentID, req.Note)
	if err != nil {
		respondError(c, "complete quest", err)
		return
	}

	c.JSON(http.StatusOK, CompletionResponse{
		Awarded:   res.Awarded,
		AwardedXP: res.AwardedXP,
		TotalXP:   res.TotalXP,
	})
}
