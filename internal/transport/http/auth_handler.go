package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"webmail/backend/internal/auth"
	"webmail/backend/internal/service"
)

// AuthHandler 处理认证相关的 HTTP 请求
type AuthHandler struct {
	auths    *auth.Service
	profiles *service.ProfileService
	log      *zap.Logger
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(auths *auth.Service, profiles *service.ProfileService, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{auths: auths, profiles: profiles, log: log}
}

// Signup 用户注册
// POST /v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var input auth.SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	result, err := h.auths.Signup(input)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword):
			BadRequest(c, GetErrorMessage(err))
		case errors.Is(err, auth.ErrUserExists):
			Conflict(c, GetErrorMessage(err))
		default:
			h.log.Error("failed to sign up user", zap.Error(err))
			InternalError(c, MsgInternalError)
		}
		return
	}

	Created(c, result)
}

// Login 用户登录
// POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input auth.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	result, err := h.auths.Login(input)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			Unauthorized(c, GetErrorMessage(err))
			return
		}
		h.log.Error("failed to log in user", zap.Error(err))
		InternalError(c, MsgInternalError)
		return
	}

	Success(c, result)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Refresh 刷新访问令牌
// POST /v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	accessToken, err := h.auths.Refresh(req.RefreshToken)
	if err != nil {
		Unauthorized(c, MsgTokenInvalid)
		return
	}

	Success(c, gin.H{"accessToken": accessToken})
}

// Me 返回当前登录用户的资料
// GET /v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	info, err := h.profiles.Get(c.GetString("userID"))
	if err != nil {
		NotFound(c, GetErrorMessage(err))
		return
	}
	Success(c, info)
}
