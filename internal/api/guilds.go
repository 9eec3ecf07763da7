package api

import (
	"net/http"
	"time"

	"questlog/internal/model"
	"questlog/internal/service"
	"questlog/pkg/auth"

	"github.com/gin-gonic/gin"
)

type guildRoutes struct {
	gs service.GuildServiceI
	ls service.LeaderboardServiceI
}

func NewGuildRoutes(handler *gin.RouterGroup, gs service.GuildServiceI, ls service.LeaderboardServiceI, a *auth.TelegramAuth) {
	r := &guildRoutes{gs: gs, ls: ls}
	h := handler.Group("/guilds")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.POST("", r.CreateGuild)
		h.GET("", r.ListGuilds)
		h.POST("/join", r.JoinGuild)
		h.GET("/:group_id/leaderboard", r.GetLeaderboard)
		h.POST("/:group_id/challenges", r.CreateChallenge)
		h.GET("/:group_id/challenges", r.ListChallenges)
	}
}

type CreateGuildRequest struct {
	Name string `json:"name" binding:"required"`
}

func (r *guildRoutes) CreateGuild(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}

	var req CreateGuildRequest
	if !bindJSON(c, &req) {
		return
	}

	group, err := r.gs.CreateGuild(c.Request.Context(), user.ID, req.Name)
	if err != nil {
		respondError(c, "create guild", err)
		return
	}

	c.JSON(http.StatusCreated, newGuildResponse(group))
}

type JoinGuildRequest struct {
	InviteCode string `json:"invite_code" binding:"required"`
}

func (r *guildRoutes) JoinGuild(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}

	var req JoinGuildRequest
	if !bindJSON(c, &req) {
		return
	}

	group, err := r.gs.JoinGuildByCode(c.Request.Context(), user.ID, req.InviteCode)
	if err != nil {
		respondError(c, "join guild", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"group_id": group.GroupID,
		"name":     group.Name,
	})
}

func (r *guildRoutes) ListGuilds(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}

	groups, err := r.gs.ListGuilds(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, "list guilds", err)
		return
	}

	out := make([]GuildResponse, len(groups))
	for i, g := range groups {
		out[i] = newGuildResponse(g)
	}

	c.JSON(http.StatusOK, out)
}

func (r *guildRoutes) GetLeaderboard(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	groupID, ok := uuidParam(c, "group_id")
	if !ok {
		return
	}

	timeframe := model.Timeframe(c.DefaultQuery("timeframe", string(model.TimeframeWeekly)))

	entries, err := r.ls.GetLeaderboard(c.Request.Context(), user.ID, groupID, timeframe)
	if err != nil {
		respondError(c, "get leaderboard", err)
		return
	}

	out := make([]LeaderboardEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = LeaderboardEntryResponse{
			Rank:        e.Rank,
			UserID:      e.UserID,
			DisplayName: e.DisplayName,
			XP:          e.XP,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"timeframe": timeframe,
		"entries":   out,
	})
}

type CreateChallengeRequest struct {
	Title    string `json:"title" binding:"required"`
	StartsOn string `json:"starts_on" binding:"required"`
	EndsOn   string `json:"ends_on" binding:"required"`
}

func (r *guildRoutes) CreateChallenge(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	groupID, ok := uuidParam(c, "group_id")
	if !ok {
		return
	}

	var req CreateChallengeRequest
	if !bindJSON(c, &req) {
		return
	}

	startsOn, err := time.Parse(dateLayout, req.StartsOn)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "starts_on must be YYYY-MM-DD"})
		return
	}
	endsOn, err := time.Parse(dateLayout, req.EndsOn)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ends_on must be YYYY-MM-DD"})
		return
	}

	challenge, err := r.gs.CreateChallenge(c.Request.Context(), user.ID, &model.Challenge{
		GroupID:  groupID,
		Title:    req.Title,
		StartsOn: startsOn,
		EndsOn:   endsOn,
	})
	if err != nil {
		respondError(c, "create challenge", err)
		return
	}

	c.JSON(http.StatusCreated, newChallengeResponse(challenge))
}

func (r *guildRoutes) ListChallenges(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	groupID, ok := uuidParam(c, "group_id")
	if !ok {
		return
	}

	challenges, err := r.gs.ListChallenges(c.Request.Context(), user.ID, groupID)
	if err != nil {
		respondError(c, "list challenges", err)
		return
	}

	out := make([]ChallengeResponse, len(challenges))
	for i, ch := range challenges {
		out[i] = newChallengeResponse(ch)
	}

	c.JSON(http.StatusOK, out)
}
