package httptransport

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"webmail/backend/internal/domain"
	"webmail/backend/internal/service"
)

// ContactHandler 处理通讯录相关的 HTTP 请求
type ContactHandler struct {
	contacts *service.ContactService
	log      *zap.Logger
}

// NewContactHandler 创建联系人处理器
func NewContactHandler(contacts *service.ContactService, log *zap.Logger) *ContactHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContactHandler{contacts: contacts, log: log}
}

// List 分页列出联系人
// GET /v1/contacts?search=&sort=name-asc&page=1&pageSize=20
func (h *ContactHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	result := h.contacts.List(
		c.GetString("userID"),
		c.Query("search"),
		c.DefaultQuery("sort", "name-asc"),
		page,
		pageSize,
	)
	Success(c, result)
}

// Get 获取联系人详情
// GET /v1/contacts/:contactId
func (h *ContactHandler) Get(c *gin.Context) {
	contact, err := h.contacts.Get(c.GetString("userID"), c.Param("contactId"))
	if err != nil {
		NotFound(c, GetErrorMessage(err))
		return
	}
	Success(c, contact)
}

// Create 新建联系人
// POST /v1/contacts
func (h *ContactHandler) Create(c *gin.Context) {
	var contact domain.Contact
	if err := c.ShouldBindJSON(&contact); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	created, err := h.contacts.Create(c.GetString("userID"), contact)
	if err != nil {
		h.log.Error("failed to create contact", zap.Error(err))
		InternalError(c, MsgContactSaveFailed)
		return
	}
	Created(c, created)
}

// Update 更新联系人
// PUT /v1/contacts/:contactId
func (h *ContactHandler) Update(c *gin.Context) {
	var contact domain.Contact
	if err := c.ShouldBindJSON(&contact); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	updated, err := h.contacts.Update(c.GetString("userID"), c.Param("contactId"), contact)
	if err != nil {
		if errors.Is(err, service.ErrContactNotFound) {
			NotFound(c, GetErrorMessage(err))
			return
		}
		h.log.Error("failed to update contact", zap.Error(err))
		InternalError(c, MsgContactSaveFailed)
		return
	}
	Success(c, updated)
}

// Delete 删除联系人
// DELETE /v1/contacts/:contactId
func (h *ContactHandler) Delete(c *gin.Context) {
	err := h.contacts.Delete(c.GetString("userID"), c.Param("contactId"))
	if err != nil {
		if errors.Is(err, service.ErrContactNotFound) {
			NotFound(c, GetErrorMessage(err))
			return
		}
		h.log.Error("failed to delete contact", zap.Error(err))
		InternalError(c, MsgContactSaveFailed)
		return
	}
	Success(c, nil)
}
