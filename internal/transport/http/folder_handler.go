package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"webmail/backend/internal/service"
)

// FolderHandler 处理自定义文件夹相关的 HTTP 请求
type FolderHandler struct {
	folders *service.FolderService
	log     *zap.Logger
}

// NewFolderHandler 创建文件夹处理器
func NewFolderHandler(folders *service.FolderService, log *zap.Logger) *FolderHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &FolderHandler{folders: folders, log: log}
}

// List 列出全部自定义文件夹
// GET /v1/folders
func (h *FolderHandler) List(c *gin.Context) {
	Success(c, h.folders.List(c.GetString("userID")))
}

// Get 获取文件夹详情
// GET /v1/folders/:folderId
func (h *FolderHandler) Get(c *gin.Context) {
	folder, err := h.folders.Get(c.GetString("userID"), c.Param("folderId"))
	if err != nil {
		NotFound(c, GetErrorMessage(err))
		return
	}
	Success(c, folder)
}

// Create 新建文件夹
// POST /v1/folders
func (h *FolderHandler) Create(c *gin.Context) {
	var input service.FolderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	folder, err := h.folders.Create(c.GetString("userID"), input)
	if err != nil {
		if errors.Is(err, service.ErrFolderNameEmpty) {
			BadRequest(c, GetErrorMessage(err))
			return
		}
		h.log.Error("failed to create folder", zap.Error(err))
		InternalError(c, MsgFolderCreateFailed)
		return
	}

	Created(c, folder)
}

// Update 更新文件夹
// PUT /v1/folders/:folderId
func (h *FolderHandler) Update(c *gin.Context) {
	var input service.FolderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	folder, err := h.folders.Update(c.GetString("userID"), c.Param("folderId"), input)
	if err != nil {
		if errors.Is(err, service.ErrFolderNotFound) {
			NotFound(c, GetErrorMessage(err))
			return
		}
		h.log.Error("failed to update folder", zap.Error(err))
		InternalError(c, MsgFolderUpdateFailed)
		return
	}

	Success(c, folder)
}

// Delete 删除文件夹，其中的邮件搬回收件箱
// DELETE /v1/folders/:folderId
func (h *FolderHandler) Delete(c *gin.Context) {
	err := h.folders.Delete(c.GetString("userID"), c.Param("folderId"))
	if err != nil {
		if errors.Is(err, service.ErrFolderNotFound) {
			NotFound(c, GetErrorMessage(err))
			return
		}
		h.log.Error("failed to delete folder", zap.Error(err))
		InternalError(c, MsgFolderDeleteFailed)
		return
	}

	Success(c, nil)
}

// ListMail 列出文件夹中的邮件，支持与系统文件夹相同的过滤/排序
// GET /v1/folders/:folderId/mail
func (h *FolderHandler) ListMail(c *gin.Context) {
	userID := c.GetString("userID")
	folderID := c.Param("folderId")

	if _, err := h.folders.Get(userID, folderID); err != nil {
		NotFound(c, GetErrorMessage(err))
		return
	}

	criteria, err := criteriaFromQuery(c)
	if err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	Success(c, h.folders.ListMail(userID, folderID, c.Query("sort"), criteria))
}
