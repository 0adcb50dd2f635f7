package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobgate/api/internal/ids"
	"jobgate/api/internal/middleware"
	"jobgate/api/internal/models"
	"jobgate/api/internal/repository"
	"jobgate/api/internal/security"
)

type registerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"displayName" binding:"required"`
	Role        string `json:"role" binding:"required"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

func (h HandlerSet) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil || role == models.RoleVisitor || role == models.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be applicant or employer"})
		return
	}

	if _, err := h.users.FindByEmail(c.Request.Context(), req.Email); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
		return
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	passwordHash, err := security.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	user := models.User{
		ID:           ids.New(),
		Email:        req.Email,
		PasswordHash: passwordHash,
		DisplayName:  req.DisplayName,
		Role:         role,
		Status:       models.UserStatusActive,
	}

	if err := h.users.Create(c.Request.Context(), user); err != nil {
		h.log.Error().Err(err).Msg("create user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	h.issueSession(c, user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if user.Status != models.UserStatusActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "account suspended"})
		return
	}

	ok, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	h.issueSession(c, user)
}

// issueSession creates the session record and binds the fresh token to the
// user. If the binding fails the session is rolled back; a binding without
// a session would authorize nothing, and the reverse leaks an entry the
// authorizer evicts on first use.
func (h HandlerSet) issueSession(c *gin.Context, user models.User) {
	sess, err := h.store.Create(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("create session failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	if err := h.tokens.Bind(c.Request.Context(), sess.Token, user.ID); err != nil {
		h.log.Error().Err(err).Msg("bind session token failed")
		_ = h.store.Remove(c.Request.Context(), sess.Token)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, authResponse{
		Token: sess.Token,
		User: userResponse{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			Role:        string(user.Role),
		},
	})
}

// Logout tears down the session named by the bearer token. It is idempotent
// and deliberately unauthenticated: an expired session should still be
// removable by whoever holds the token.
func (h HandlerSet) Logout(c *gin.Context) {
	token := middleware.BearerToken(c)
	if token == "" {
		c.Status(http.StatusNoContent)
		return
	}

	if err := h.store.Remove(c.Request.Context(), token); err != nil {
		h.log.Error().Err(err).Msg("remove session failed")
	}
	if err := h.tokens.Unbind(c.Request.Context(), token); err != nil {
		h.log.Error().Err(err).Msg("unbind session token failed")
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) Me(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"role": string(identity.Role),
	})
}
