package httptransport

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"webmail/backend/internal/domain"
	"webmail/backend/internal/service"
)

// MailHandler 处理邮件相关的 HTTP 请求
type MailHandler struct {
	mails       *service.MailboxService
	attachments *service.AttachmentStore
	log         *zap.Logger
}

// NewMailHandler 创建邮件处理器
func NewMailHandler(mails *service.MailboxService, attachments *service.AttachmentStore, log *zap.Logger) *MailHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MailHandler{mails: mails, attachments: attachments, log: log}
}

// criteriaFromQuery 从查询参数解析过滤条件，无任何条件时返回 nil。
//
// 支持的参数:
//   - search: 在主题/正文/发件人中模糊匹配
//   - dateFrom / dateTo: 日期范围（格式 2006-01-02）
//   - sender: 发件人模糊匹配
//   - priority: 逗号分隔的优先级列表，如 "3,4"
//   - hasAttachment / starred: true/false
//   - subject / body: 字段级模糊匹配
func criteriaFromQuery(c *gin.Context) (*domain.FilterCriteria, error) {
	criteria := &domain.FilterCriteria{
		SearchTerm:      c.Query("search"),
		Sender:          c.Query("sender"),
		SubjectContains: c.Query("subject"),
		BodyContains:    c.Query("body"),
	}

	if v := c.Query("dateFrom"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, errors.New("invalid dateFrom")
		}
		criteria.DateFrom = &t
	}
	if v := c.Query("dateTo"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, errors.New("invalid dateTo")
		}
		criteria.DateTo = &t
	}
	if v := c.Query("priority"); v != "" {
		for _, part := range strings.Split(v, ",") {
			p, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, errors.New("invalid priority")
			}
			criteria.Priority = append(criteria.Priority, p)
		}
	}
	if v := c.Query("hasAttachment"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.New("invalid hasAttachment")
		}
		criteria.HasAttachment = &b
	}
	if v := c.Query("starred"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.New("invalid starred")
		}
		criteria.IsStarred = &b
	}

	if !criteria.HasActive() {
		return nil, nil
	}
	return criteria, nil
}

// ListFolder 列出系统文件夹中的邮件
// GET /v1/mail/:folder?sort=date-desc&search=...
func (h *MailHandler) ListFolder(c *gin.Context) {
	userID := c.GetString("userID")
	folder := c.Param("folder")

	if !domain.IsSystemFolder(folder) {
		NotFound(c, "文件夹不存在")
		return
	}

	criteria, err := criteriaFromQuery(c)
	if err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	mails := h.mails.ListFolder(userID, folder, c.Query("sort"), criteria)
	Success(c, mails)
}

// ListStarred 列出全部加星邮件
// GET /v1/mail/starred/all
func (h *MailHandler) ListStarred(c *gin.Context) {
	userID := c.GetString("userID")

	criteria, err := criteriaFromQuery(c)
	if err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	Success(c, h.mails.ListStarred(userID, c.Query("sort"), criteria))
}

// GetMail 获取单封邮件详情
// GET /v1/mail/:folder/:id
func (h *MailHandler) GetMail(c *gin.Context) {
	userID := c.GetString("userID")
	folder := c.Param("folder")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		BadRequest(c, MsgInvalidMailID)
		return
	}

	mail, err := h.mails.GetByID(userID, folder, id)
	if err != nil {
		NotFound(c, GetErrorMessage(err))
		return
	}
	Success(c, mail)
}

type composeRequest struct {
	Recipients  []string                   `json:"recipients" binding:"required"`
	Subject     string                     `json:"subject"`
	Body        string                     `json:"body"`
	Priority    int                        `json:"priority"`
	Attachments []service.AttachmentUpload `json:"attachments"`
}

// Compose 发送邮件
// POST /v1/mail/send
func (h *MailHandler) Compose(c *gin.Context) {
	userID := c.GetString("userID")

	var req composeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	content, err := h.buildContent(req)
	if err != nil {
		h.attachmentError(c, err)
		return
	}

	result, err := h.mails.Compose(userID, content)
	if err != nil {
		h.log.Error("failed to compose mail", zap.Error(err))
		InternalError(c, MsgMailComposeFailed)
		return
	}

	Created(c, result)
}

// SaveDraft 保存草稿
// POST /v1/mail/draft
func (h *MailHandler) SaveDraft(c *gin.Context) {
	userID := c.GetString("userID")

	var req composeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	content, err := h.buildContent(req)
	if err != nil {
		h.attachmentError(c, err)
		return
	}

	mail, err := h.mails.SaveDraft(userID, content)
	if err != nil {
		h.log.Error("failed to save draft", zap.Error(err))
		InternalError(c, MsgDraftSaveFailed)
		return
	}

	Created(c, mail)
}

type moveRequest struct {
	FromFolder string `json:"fromFolder" binding:"required"`
	ToFolder   string `json:"toFolder" binding:"required"`
}

// Move 在文件夹之间移动邮件
// POST /v1/mail/:folder/:id/move 使用请求体中的目标文件夹
func (h *MailHandler) Move(c *gin.Context) {
	userID := c.GetString("userID")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		BadRequest(c, MsgInvalidMailID)
		return
	}

	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	if err := h.mails.Move(userID, id, req.FromFolder, req.ToFolder); err != nil {
		if errors.Is(err, service.ErrMailNotFound) {
			NotFound(c, GetErrorMessage(err))
			return
		}
		h.log.Error("failed to move mail", zap.Error(err))
		InternalError(c, MsgMailMoveFailed)
		return
	}

	Success(c, nil)
}

// Delete 删除邮件：非回收站移入回收站，回收站内彻底删除
// DELETE /v1/mail/:folder/:id
func (h *MailHandler) Delete(c *gin.Context) {
	userID := c.GetString("userID")
	folder := c.Param("folder")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		BadRequest(c, MsgInvalidMailID)
		return
	}

	if err := h.mails.Delete(userID, folder, id); err != nil {
		if errors.Is(err, service.ErrMailNotFound) {
			NotFound(c, GetErrorMessage(err))
			return
		}
		h.log.Error("failed to delete mail", zap.Error(err))
		InternalError(c, MsgMailDeleteFailed)
		return
	}

	Success(c, nil)
}

// ToggleStar 切换邮件星标
// POST /v1/mail/:folder/:id/star
func (h *MailHandler) ToggleStar(c *gin.Context) {
	userID := c.GetString("userID")
	folder := c.Param("folder")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		BadRequest(c, MsgInvalidMailID)
		return
	}

	if err := h.mails.ToggleStar(userID, folder, id); err != nil {
		if errors.Is(err, service.ErrMailNotFound) {
			NotFound(c, GetErrorMessage(err))
			return
		}
		InternalError(c, MsgInternalError)
		return
	}

	Success(c, nil)
}

// DownloadAttachment 按存储路径下载附件
// GET /v1/attachments/*path
func (h *MailHandler) DownloadAttachment(c *gin.Context) {
	relPath := strings.TrimPrefix(c.Param("path"), "/")

	f, err := h.attachments.Open(relPath)
	if err != nil {
		NotFound(c, "附件不存在")
		return
	}
	f.Close()

	c.FileAttachment(f.Name(), relPath[strings.LastIndex(relPath, "/")+1:])
}

// buildContent 落盘附件并组装邮件内容
func (h *MailHandler) buildContent(req composeRequest) (domain.MailContent, error) {
	attachments, err := h.attachments.SaveAll(req.Attachments)
	if err != nil {
		return domain.MailContent{}, err
	}
	return domain.MailContent{
		Recipients:  req.Recipients,
		Subject:     req.Subject,
		Body:        req.Body,
		Priority:    req.Priority,
		Attachments: attachments,
	}, nil
}

func (h *MailHandler) attachmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAttachmentTooLarge):
		PayloadTooLarge(c, GetErrorMessage(service.ErrAttachmentTooLarge))
	case errors.Is(err, service.ErrAttachmentEmpty):
		BadRequest(c, GetErrorMessage(service.ErrAttachmentEmpty))
	default:
		h.log.Error("failed to save attachment", zap.Error(err))
		InternalError(c, MsgInternalError)
	}
}
