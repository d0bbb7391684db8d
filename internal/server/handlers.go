package server

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/vovakirdan/minigames/internal/leaderboard"
)

type sessionRequest struct {
	SessionID string `json:"sessionId"`
}

type scoreRequest struct {
	Score         any            `json:"score"`
	PlayerName    *string        `json:"playerName"`
	GameSessionID string         `json:"gameSessionId"`
	GameState     map[string]any `json:"gameState"`
}

type handlers struct {
	gate   *leaderboard.Gate
	logger *log.Logger
}

// getLeaderboard handles GET /api/:game/leaderboard.
func (h *handlers) getLeaderboard(c *gin.Context) {
	game := c.Param("game")
	entries, err := h.gate.Top(c.Request.Context(), game)
	if err != nil {
		h.fail(c, "read leaderboard", game, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

// createSession handles POST /api/:game/session.
func (h *handlers) createSession(c *gin.Context) {
	game := c.Param("game")

	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.gate.RegisterSession(c.Request.Context(), game, req.SessionID, c.ClientIP()); err != nil {
		h.fail(c, "register session", game, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// submitScore handles POST /api/:game/score.
func (h *handlers) submitScore(c *gin.Context) {
	game := c.Param("game")

	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entries, err := h.gate.Submit(c.Request.Context(), game, leaderboard.Submission{
		Score:      req.Score,
		PlayerName: req.PlayerName,
		SessionID:  req.GameSessionID,
		GameState:  req.GameState,
		IP:         c.ClientIP(),
	})
	if err != nil {
		h.fail(c, "submit score", game, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "leaderboard": entries})
}

func (h *handlers) fail(c *gin.Context, op, game string, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(op+" failed", "game", game, "error", err)
	} else {
		h.logger.Debug(op+" rejected", "game", game, "ip", c.ClientIP(), "reason", err)
	}
	c.JSON(status, gin.H{"error": msg})
}

// statusFor maps gate errors to an HTTP status and a client-safe message.
// Anything unrecognized is a store failure and is reported generically.
func statusFor(err error) (int, string) {
	rejections := []struct {
		err    error
		status int
	}{
		{leaderboard.ErrUnknownGame, http.StatusNotFound},
		{leaderboard.ErrInvalidSession, http.StatusBadRequest},
		{leaderboard.ErrInvalidScore, http.StatusBadRequest},
		{leaderboard.ErrInvalidState, http.StatusBadRequest},
		{leaderboard.ErrInvalidName, http.StatusBadRequest},
		{leaderboard.ErrSessionNotFound, http.StatusUnauthorized},
		{leaderboard.ErrSessionExpired, http.StatusUnauthorized},
		{leaderboard.ErrSessionForeign, http.StatusUnauthorized},
		{leaderboard.ErrDuplicateScore, http.StatusTooManyRequests},
	}
	for _, r := range rejections {
		if errors.Is(err, r.err) {
			return r.status, r.err.Error()
		}
	}
	return http.StatusInternalServerError, "internal server error"
}
