package session

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/music-timeline-game/pkg/jwt"
	"github.com/music-timeline-game/pkg/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	sessions := r.Group("/sessions")
	{
		sessions.POST("", h.createSession)
		sessions.GET("/:pin", h.getSnapshot)
		sessions.GET("/:pin/qr", h.getJoinQR)
		sessions.GET("/:pin/history", h.getHistory)
		sessions.POST("/:pin/join", h.join)
		sessions.POST("/:pin/heartbeat", h.heartbeat)
		sessions.PUT("/:pin/rules", h.updateRules)
		sessions.POST("/:pin/start", h.startGame)
		sessions.POST("/:pin/turn/confirm", h.confirmTurn)
		sessions.POST("/:pin/steal/decide", h.decideSteal)
		sessions.POST("/:pin/steal/place-phase", h.transitionToPlacePhase)
		sessions.POST("/:pin/steal/submit", h.submitSteal)
		sessions.POST("/:pin/steal/resolve", h.resolveStealPhase)
		sessions.POST("/:pin/skip-song", h.skipSong)
		sessions.POST("/:pin/free-song", h.getFreeSong)
		sessions.POST("/:pin/rematch", h.startRematch)
	}
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInsufficientTokens):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrBadState):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{"error": err.Error()})
}

func pinParam(c *gin.Context) string {
	return strings.ToUpper(c.Param("pin"))
}

func actorID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
		return uuid.Nil, false
	}
	return id, true
}

type CreateSessionRequest struct {
	Avatar string `json:"avatar"`
}

func (h *Handler) createSession(c *gin.Context) {
	var req CreateSessionRequest
	_ = c.ShouldBindJSON(&req)

	id, ok := actorID(c)
	if !ok {
		return
	}

	sess, err := h.service.CreateSession(c.Request.Context(), id, c.GetString("user_name"), req.Avatar)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sess)
}

func (h *Handler) getSnapshot(c *gin.Context) {
	view, err := h.service.Snapshot(c.Request.Context(), pinParam(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *Handler) getJoinQR(c *gin.Context) {
	pin := pinParam(c)
	if !h.service.Exists(pin) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	base := os.Getenv("PUBLIC_URL")
	if base == "" {
		base = "http://" + c.Request.Host
	}

	png, err := qrcode.Encode(fmt.Sprintf("%s/join/%s", base, pin), qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) getHistory(c *gin.Context) {
	records, err := h.service.History(c.Request.Context(), pinParam(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

type JoinRequest struct {
	Name   string `json:"name" binding:"required,max=32"`
	Avatar string `json:"avatar"`
}

func (h *Handler) join(c *gin.Context) {
	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, ok := actorID(c)
	if !ok {
		return
	}

	player, err := h.service.Join(c.Request.Context(), pinParam(c), id, req.Name, req.Avatar)
	if err != nil {
		abortWithError(c, err)
		return
	}

	// A reconnect adopts the existing player identity, so the caller gets
	// a token bound to that id.
	token, err := jwt.GenerateToken(player.ID.String(), player.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.SetCookie("auth_token", token, 24*3600, "/", "", false, true)

	c.JSON(http.StatusCreated, gin.H{"player": player, "token": token})
}

func (h *Handler) heartbeat(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}

	if err := h.service.Heartbeat(c.Request.Context(), pinParam(c), id); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) updateRules(c *gin.Context) {
	var rules models.Rules
	if err := c.ShouldBindJSON(&rules); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, ok := actorID(c)
	if !ok {
		return
	}

	if err := h.service.UpdateRules(c.Request.Context(), pinParam(c), id, rules); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

func (h *Handler) startGame(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}

	if err := h.service.StartGame(c.Request.Context(), pinParam(c), id); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

type ConfirmTurnRequest struct {
	Index int           `json:"index" binding:"min=0"`
	Guess *models.Guess `json:"guess"`
}

func (h *Handler) confirmTurn(c *gin.Context) {
	var req ConfirmTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, ok := actorID(c)
	if !ok {
		return
	}

	if err := h.service.ConfirmTurn(c.Request.Context(), pinParam(c), id, req.Index, req.Guess); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

type DecideStealRequest struct {
	Steal *bool `json:"steal" binding:"required"`
}

func (h *Handler) decideSteal(c *gin.Context) {
	var req DecideStealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, ok := actorID(c)
	if !ok {
		return
	}

	if err := h.service.DecideSteal(c.Request.Context(), pinParam(c), id, *req.Steal); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

func (h *Handler) transitionToPlacePhase(c *gin.Context) {
	if err := h.service.TransitionToPlacePhase(c.Request.Context(), pinParam(c)); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

type SubmitStealRequest struct {
	Index int `json:"index" binding:"min=0"`
}

func (h *Handler) submitSteal(c *gin.Context) {
	var req SubmitStealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, ok := actorID(c)
	if !ok {
		return
	}

	if err := h.service.SubmitSteal(c.Request.Context(), pinParam(c), id, req.Index); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

func (h *Handler) resolveStealPhase(c *gin.Context) {
	if err := h.service.ResolveStealPhase(c.Request.Context(), pinParam(c)); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

func (h *Handler) skipSong(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}

	if err := h.service.SkipSong(c.Request.Context(), pinParam(c), id); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

func (h *Handler) getFreeSong(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}

	if err := h.service.GetFreeSong(c.Request.Context(), pinParam(c), id); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

func (h *Handler) startRematch(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}

	if err := h.service.StartRematch(c.Request.Context(), pinParam(c), id); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusOK)
}
