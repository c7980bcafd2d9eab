package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"webmail/backend/internal/service"
)

// ProfileHandler 处理用户资料相关的 HTTP 请求
type ProfileHandler struct {
	profiles *service.ProfileService
	log      *zap.Logger
}

// NewProfileHandler 创建资料处理器
func NewProfileHandler(profiles *service.ProfileService, log *zap.Logger) *ProfileHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileHandler{profiles: profiles, log: log}
}

// Get 获取当前用户资料
// GET /v1/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	info, err := h.profiles.Get(c.GetString("userID"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			NotFound(c, GetErrorMessage(err))
			return
		}
		InternalError(c, MsgInternalError)
		return
	}
	Success(c, info)
}

// Update 更新资料字段
// PATCH /v1/profile
func (h *ProfileHandler) Update(c *gin.Context) {
	var update service.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	info, err := h.profiles.Update(c.GetString("userID"), update)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			NotFound(c, GetErrorMessage(err))
			return
		}
		h.log.Error("failed to update profile", zap.Error(err))
		InternalError(c, MsgProfileUpdateFailed)
		return
	}
	Success(c, info)
}

// Undo 撤销上一次资料修改
// POST /v1/profile/undo
func (h *ProfileHandler) Undo(c *gin.Context) {
	info, err := h.profiles.Undo(c.GetString("userID"))
	if err != nil {
		if errors.Is(err, service.ErrNothingToUndo) {
			Conflict(c, GetErrorMessage(err))
			return
		}
		InternalError(c, MsgProfileUpdateFailed)
		return
	}
	Success(c, info)
}

// Redo 重做被撤销的修改
// POST /v1/profile/redo
func (h *ProfileHandler) Redo(c *gin.Context) {
	info, err := h.profiles.Redo(c.GetString("userID"))
	if err != nil {
		if errors.Is(err, service.ErrNothingToRedo) {
			Conflict(c, GetErrorMessage(err))
			return
		}
		InternalError(c, MsgProfileUpdateFailed)
		return
	}
	Success(c, info)
}
