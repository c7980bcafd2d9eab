package service

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"webmail/backend/internal/domain"
	"webmail/backend/internal/mailfilter"
	"webmail/backend/internal/mailsort"
	"webmail/backend/internal/storage/jsonfile"
)

var (
	// ErrMailNotFound 目标文件夹中不存在该邮件
	ErrMailNotFound = errors.New("mail not found")
	// ErrRecipientNotFound 收件人没有开通邮箱
	ErrRecipientNotFound = errors.New("recipient not found")
)

// MailNotifier 新邮件到达时的推送回调（WebSocket 层实现）
type MailNotifier interface {
	NotifyNewMail(userID string, mail *domain.Mail)
}

// MailboxService 编排存储、过滤链与排序表，并承担跨文件的
// 危险操作：删除进回收站、彻底删除、跨文件夹移动、加星维护。
//
// 跨两个文件的操作不具备跨文件原子性（无 WAL 的平面文件存储），
// 两次写入之间崩溃会留下不一致状态，这是设计上接受的已知弱点。
type MailboxService struct {
	store    *jsonfile.Store
	factory  *MailFactory
	sorts    *mailsort.Registry
	log      *zap.Logger
	notifier MailNotifier
}

// NewMailboxService 创建邮箱业务服务
func NewMailboxService(store *jsonfile.Store, factory *MailFactory, sorts *mailsort.Registry, log *zap.Logger) *MailboxService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MailboxService{
		store:   store,
		factory: factory,
		sorts:   sorts,
		log:     log,
	}
}

// SetNotifier 设置新邮件推送回调（避免与 WebSocket 层循环依赖）
func (s *MailboxService) SetNotifier(n MailNotifier) {
	s.notifier = n
}

// ListFolder 列出一个文件夹的邮件：读取 → 过滤（有条件时）→ 排序（有策略时）。
// 纯读取不加锁，接受与并发写之间的最后写者胜出。
func (s *MailboxService) ListFolder(userID, folder, sortKey string, criteria *domain.FilterCriteria) []domain.Mail {
	mails := s.store.ReadFolder(userID, folder)

	if mailfilter.HasActiveFilters(criteria) {
		mails = mailfilter.Apply(mails, criteria)
	}
	if sortKey != "" {
		mails = s.sorts.Sort(mails, sortKey)
	}
	return mails
}

// GetByID 按 ID 在指定文件夹中查找单封邮件
func (s *MailboxService) GetByID(userID, folder string, id int) (*domain.Mail, error) {
	for _, m := range s.store.ReadFolder(userID, folder) {
		if m.ID == id {
			found := m.Clone()
			return &found, nil
		}
	}
	return nil, ErrMailNotFound
}

// ComposeResult 按收件人汇报投递结果，部分成功是一等公民。
type ComposeResult struct {
	Mail      *domain.Mail `json:"mail"`
	Delivered []string     `json:"delivered"`
	Failed    []string     `json:"failed"`
}

// Compose 发送邮件：为每个已开通邮箱的收件人投递一份收件箱副本，
// 未注册的收件人记入 Failed 但不中断其余投递；无论单个收件人
// 成败，发件人的已发送副本都会写入。收件人按输入顺序逐个处理。
func (s *MailboxService) Compose(userID string, content domain.MailContent) (*ComposeResult, error) {
	mail, err := s.factory.New(content)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail: %w", err)
	}
	mail.From = userID

	result := &ComposeResult{
		Mail:      &mail,
		Delivered: make([]string, 0, len(content.Recipients)),
		Failed:    []string{},
	}

	for _, recipient := range content.Recipients {
		// 收件人以邮箱地址给出，投递目录按本地部分解析
		recipientID, err := domain.UserIDFromAddress(recipient)
		if err != nil || !s.store.UserExists(recipientID) {
			s.log.Info("compose: recipient not provisioned, skipping",
				zap.String("from", userID), zap.String("recipient", recipient))
			result.Failed = append(result.Failed, recipient)
			continue
		}

		if err := s.appendToFolder(recipientID, domain.FolderInbox, mail.Clone()); err != nil {
			s.log.Error("compose: failed to deliver to inbox",
				zap.String("recipient", recipient), zap.Error(err))
			result.Failed = append(result.Failed, recipient)
			continue
		}
		result.Delivered = append(result.Delivered, recipient)

		if s.notifier != nil {
			s.notifier.NotifyNewMail(recipientID, &mail)
		}
	}

	// 已发送副本与单个收件人的成败无关
	if err := s.appendToFolder(userID, domain.FolderSent, mail.Clone()); err != nil {
		return result, fmt.Errorf("failed to write sent copy: %w", err)
	}

	return result, nil
}

// SaveDraft 保存草稿
func (s *MailboxService) SaveDraft(userID string, content domain.MailContent) (*domain.Mail, error) {
	mail, err := s.factory.New(content)
	if err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}
	mail.From = userID

	if err := s.appendToFolder(userID, domain.FolderDraft, mail); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}
	return &mail, nil
}

// appendToFolder 在持锁状态下读-追加-写一个文件夹
func (s *MailboxService) appendToFolder(userID, folder string, mail domain.Mail) error {
	mu := s.store.Lock(userID, folder)
	mu.Lock()
	defer mu.Unlock()

	mails := s.store.ReadFolder(userID, folder)
	mails = append(mails, mail)
	return s.store.WriteFolder(userID, folder, mails)
}

// Delete 删除邮件。folder 为回收站时彻底删除（不可恢复），
// 否则移入回收站并盖上 TrashedAt 时间戳。
//
// 移入回收站是两文件操作：先提交回收站的追加，成功后再改写
// 源文件夹。这样回收站写失败时源文件夹原封不动；两次写之间
// 崩溃的后果是邮件在两边重复出现，而不会丢失。
func (s *MailboxService) Delete(userID, folder string, id int) error {
	if folder == domain.FolderTrash {
		return s.deletePermanently(userID, id)
	}

	unlock := s.store.LockPair(userID, folder, domain.FolderTrash)
	defer unlock()

	mails := s.store.ReadFolder(userID, folder)
	idx := indexOf(mails, id)
	if idx < 0 {
		return ErrMailNotFound
	}

	trashed := mails[idx].Clone()
	now := domain.Now()
	trashed.TrashedAt = &now
	trashed.Folder = ""
	trashed.CustomFolderID = ""

	trashMails := s.store.ReadFolder(userID, domain.FolderTrash)
	trashMails = append(trashMails, trashed)
	if err := s.store.WriteFolder(userID, domain.FolderTrash, trashMails); err != nil {
		return fmt.Errorf("failed to write trash: %w", err)
	}

	remaining := append(mails[:idx:idx], mails[idx+1:]...)
	if err := s.store.WriteFolder(userID, folder, remaining); err != nil {
		// 尽力回滚回收站的追加，避免长期重复
		s.rollbackTrashAppend(userID, id)
		return fmt.Errorf("failed to rewrite source folder: %w", err)
	}

	s.log.Info("mail moved to trash",
		zap.String("user", userID), zap.String("folder", folder), zap.Int("id", id))
	return nil
}

// rollbackTrashAppend 源文件夹改写失败后撤销回收站里的副本
func (s *MailboxService) rollbackTrashAppend(userID string, id int) {
	trashMails := s.store.ReadFolder(userID, domain.FolderTrash)
	idx := indexOf(trashMails, id)
	if idx < 0 {
		return
	}
	trashMails = append(trashMails[:idx:idx], trashMails[idx+1:]...)
	if err := s.store.WriteFolder(userID, domain.FolderTrash, trashMails); err != nil {
		s.log.Error("failed to roll back trash append, duplicate copy remains",
			zap.String("user", userID), zap.Int("id", id), zap.Error(err))
	}
}

// deletePermanently 从回收站中无条件移除
func (s *MailboxService) deletePermanently(userID string, id int) error {
	mu := s.store.Lock(userID, domain.FolderTrash)
	mu.Lock()
	defer mu.Unlock()

	mails := s.store.ReadFolder(userID, domain.FolderTrash)
	idx := indexOf(mails, id)
	if idx < 0 {
		return ErrMailNotFound
	}

	remaining := append(mails[:idx:idx], mails[idx+1:]...)
	if err := s.store.WriteFolder(userID, domain.FolderTrash, remaining); err != nil {
		return fmt.Errorf("failed to rewrite trash: %w", err)
	}

	s.log.Info("mail permanently deleted",
		zap.String("user", userID), zap.Int("id", id))
	return nil
}

// Move 把邮件从一个文件夹移到另一个（系统或自定义均可）。
// 写入顺序与 Delete 相同：先提交目的地，再改写来源。
// CustomFolderID 随物理位置更新，保持标注字段与文件一致。
func (s *MailboxService) Move(userID string, id int, fromFolder, toFolder string) error {
	if fromFolder == toFolder {
		return nil
	}

	unlock := s.store.LockPair(userID, fromFolder, toFolder)
	defer unlock()

	mails := s.store.ReadFolder(userID, fromFolder)
	idx := indexOf(mails, id)
	if idx < 0 {
		return ErrMailNotFound
	}

	moved := mails[idx].Clone()
	moved.Folder = ""
	if domain.IsSystemFolder(toFolder) {
		moved.CustomFolderID = ""
	} else {
		moved.CustomFolderID = strings.TrimPrefix(toFolder, domain.CustomFolderPrefix)
	}
	if toFolder == domain.FolderTrash {
		now := domain.Now()
		moved.TrashedAt = &now
	} else {
		moved.TrashedAt = nil
	}

	destMails := s.store.ReadFolder(userID, toFolder)
	destMails = append(destMails, moved)
	if err := s.store.WriteFolder(userID, toFolder, destMails); err != nil {
		return fmt.Errorf("failed to write destination folder: %w", err)
	}

	remaining := append(mails[:idx:idx], mails[idx+1:]...)
	if err := s.store.WriteFolder(userID, fromFolder, remaining); err != nil {
		return fmt.Errorf("failed to rewrite source folder: %w", err)
	}

	s.log.Info("mail moved",
		zap.String("user", userID), zap.Int("id", id),
		zap.String("from", fromFolder), zap.String("to", toFolder))
	return nil
}

// ToggleStar 在邮件所在的文件夹文件内就地翻转加星状态。
func (s *MailboxService) ToggleStar(userID, folder string, id int) error {
	mu := s.store.Lock(userID, folder)
	mu.Lock()
	defer mu.Unlock()

	mails := s.store.ReadFolder(userID, folder)
	idx := indexOf(mails, id)
	if idx < 0 {
		return ErrMailNotFound
	}

	mails[idx].Starred = !mails[idx].Starred
	if err := s.store.WriteFolder(userID, folder, mails); err != nil {
		return fmt.Errorf("failed to rewrite folder: %w", err)
	}
	return nil
}

// ListStarred 聚合全部加星邮件：扫描 inbox/sent/draft 加上所有
// 自定义文件夹，为每条结果标注来源文件夹，保证聚合视图上的后续
// 操作能回到正确的物理文件。加星没有独立的镜像文件，扫描即是
// 唯一事实来源，代价是每次查询 O(全部邮件数)。
func (s *MailboxService) ListStarred(userID, sortKey string, criteria *domain.FilterCriteria) []domain.Mail {
	folders := []string{domain.FolderInbox, domain.FolderSent, domain.FolderDraft}
	folders = append(folders, s.store.CustomFolderFiles(userID)...)

	starred := make([]domain.Mail, 0)
	for _, folder := range folders {
		for _, m := range s.store.ReadFolder(userID, folder) {
			if !m.Starred {
				continue
			}
			annotated := m.Clone()
			annotated.Folder = folder
			starred = append(starred, annotated)
		}
	}

	if mailfilter.HasActiveFilters(criteria) {
		starred = mailfilter.Apply(starred, criteria)
	}
	if sortKey != "" {
		starred = s.sorts.Sort(starred, sortKey)
	}
	return starred
}

// indexOf 返回 ID 对应的下标，不存在时为 -1
func indexOf(mails []domain.Mail, id int) int {
	for i, m := range mails {
		if m.ID == id {
			return i
		}
	}
	return -1
}
