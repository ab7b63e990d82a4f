package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/pokemon-battle-service/internal/auth"
	"github.com/maxviazov/pokemon-battle-service/internal/middleware"
	"github.com/maxviazov/pokemon-battle-service/internal/model"
	"github.com/maxviazov/pokemon-battle-service/internal/repository"
	"github.com/maxviazov/pokemon-battle-service/internal/service"
	"github.com/maxviazov/pokemon-battle-service/pkg/response"
)

// AuthHandler serves /auth: registration, login, token checks and user administration.
type AuthHandler struct {
	svc service.AuthService
}

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Register mounts the auth routes. limit guards login and may be nil.
func (h *AuthHandler) Register(r *gin.RouterGroup, requireAuth, limit gin.HandlerFunc) {
	g := r.Group("/auth")
	{
		g.POST("/register", h.register)
		if limit != nil {
			g.POST("/login", limit, h.login)
		} else {
			g.POST("/login", h.login)
		}

		b := g.Group("", requireAuth)
		b.GET("/validate", h.validate)
		b.POST("/refresh", h.refresh)
		b.POST("/change-password", h.changePassword)

		admin := b.Group("/users", adminOnly)
		admin.GET("", h.listUsers)
		admin.GET("/:id", h.getUser)
		admin.GET("/by-username/:username", h.getUserByUsername)
		admin.GET("/exists/:username", h.userExists)
		admin.PUT("/:id/role", h.updateRole)
	}
}

type registerRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Email           string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type roleRequest struct {
	Role model.Role `json:"role"`
}

// validateResponse echoes the identity carried by a valid token.
type validateResponse struct {
	Valid     bool       `json:"valid"`
	UserID    int64      `json:"user_id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (h *AuthHandler) register(c *gin.Context) {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	writeOne[model.AuthResult](c, http.StatusCreated)(h.svc.Register(c.Request.Context(), service.RegisterInput{
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Email:           req.Email,
	}))
}

func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	writeOne[model.AuthResult](c, http.StatusOK)(h.svc.Login(c.Request.Context(), req.Username, req.Password))
}

func (h *AuthHandler) validate(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.WriteError(c, auth.ErrMissingToken)
		return
	}
	out := validateResponse{
		Valid:    true,
		UserID:   claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
		Role:     claims.Role,
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.UTC()
		out.ExpiresAt = &exp
	}
	response.WriteData(c, http.StatusOK, out)
}

func (h *AuthHandler) refresh(c *gin.Context) {
	claims, _ := middleware.Claims(c)
	writeOne[model.AuthResult](c, http.StatusOK)(h.svc.Refresh(c.Request.Context(), claims))
}

func (h *AuthHandler) changePassword(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.WriteError(c, auth.ErrMissingToken)
		return
	}
	var req changePasswordRequest
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), claims.UserID, req.OldPassword, req.NewPassword); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) listUsers(c *gin.Context) {
	writeList[model.User](c)(h.svc.ListUsers(c.Request.Context()))
}

func (h *AuthHandler) getUser(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	writeOne[model.User](c, http.StatusOK)(h.svc.GetUserByID(c.Request.Context(), id))
}

func (h *AuthHandler) getUserByUsername(c *gin.Context) {
	writeOne[model.User](c, http.StatusOK)(h.svc.GetUserByUsername(c.Request.Context(), c.Param("username")))
}

func (h *AuthHandler) userExists(c *gin.Context) {
	username := c.Param("username")
	ok, err := h.svc.UserExists(c.Request.Context(), username)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"username": username, "exists": ok})
}

func (h *AuthHandler) updateRole(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.WriteError(c, err)
		return
	}
	var req roleRequest
	if err := bindJSON(c, &req); err != nil {
		response.WriteError(c, err)
		return
	}
	ok, err := h.svc.UpdateUserRole(c.Request.Context(), id, req.Role)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	if !ok {
		response.WriteError(c, repository.ErrNotFound)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"user_id": id, "role": req.Role})
}
