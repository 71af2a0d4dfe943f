package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/iapss/iapss-backend/internal/data/repos"
	types "github.com/iapss/iapss-backend/internal/domain"
	"github.com/iapss/iapss-backend/internal/http/response"
	"github.com/iapss/iapss-backend/internal/platform/apierr"
	"github.com/iapss/iapss-backend/internal/platform/ctxutil"
	"github.com/iapss/iapss-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
	users       repos.UserRepo
}

func NewAuthHandler(authService services.AuthService, users repos.UserRepo) *AuthHandler {
	return &AuthHandler{authService: authService, users: users}
}

type userView struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

func viewOf(u *types.User) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bindBody(c, &req) {
		return
	}
	user, err := ah.authService.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"user": viewOf(user)})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bindBody(c, &req) {
		return
	}
	user, token, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"access_token": token,
		"expires_in":   int(ah.authService.TokenTTL().Seconds()),
		"user":         viewOf(user),
	})
}

func (ah *AuthHandler) Me(c *gin.Context) {
	id := ctxutil.UserID(c.Request.Context())
	users, err := ah.users.GetByIDs(c.Request.Context(), nil, []uuid.UUID{id})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if len(users) == 0 {
		response.RespondAPIError(c, apierr.NotFound("user not found"))
		return
	}
	response.RespondOK(c, gin.H{"user": viewOf(users[0])})
}
