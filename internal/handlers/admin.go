package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h HandlerSet) AdminSessionStats(c *gin.Context) {
	count, err := h.store.Count(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("count sessions failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session count failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"liveSessions": count,
		"backend":      h.cfg.Session.Backend,
	})
}

// AdminRevokeSession force-evicts a session and its identity binding.
// Revoking a token that no longer exists is a success; the end state is the
// same either way.
func (h HandlerSet) AdminRevokeSession(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}

	if err := h.store.Remove(c.Request.Context(), token); err != nil {
		h.log.Error().Err(err).Msg("remove session failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "revoke failed"})
		return
	}
	if err := h.tokens.Unbind(c.Request.Context(), token); err != nil {
		h.log.Error().Err(err).Msg("unbind session token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "revoke failed"})
		return
	}

	c.Status(http.StatusNoContent)
}
