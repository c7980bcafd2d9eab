package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"webmail/backend/internal/domain"
	"webmail/backend/internal/mailfilter"
	"webmail/backend/internal/mailsort"
	"webmail/backend/internal/storage/jsonfile"
)

var (
	// ErrFolderNotFound 自定义文件夹不存在
	ErrFolderNotFound = errors.New("folder not found")
	// ErrFolderNameEmpty 文件夹名为空
	ErrFolderNameEmpty = errors.New("folder name must not be empty")
)

// foldersDoc 文件夹元数据文档名（folders.json）
const foldersDoc = "folders"

// FolderService 管理用户自定义文件夹：元数据保存在 folders.json，
// 每个文件夹的邮件保存在独立的 folder_<id>.json。
type FolderService struct {
	store *jsonfile.Store
	sorts *mailsort.Registry
	log   *zap.Logger
}

// NewFolderService 创建文件夹服务
func NewFolderService(store *jsonfile.Store, sorts *mailsort.Registry, log *zap.Logger) *FolderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &FolderService{store: store, sorts: sorts, log: log}
}

// FolderInput 创建/更新文件夹的输入
type FolderInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// List 返回用户的全部自定义文件夹，邮件计数按当前文件内容刷新。
func (s *FolderService) List(userID string) []domain.Folder {
	folders := s.readAll(userID)
	for i := range folders {
		folders[i].EmailCount = len(s.store.ReadFolder(userID, domain.CustomFolderFile(folders[i].ID)))
	}
	return folders
}

// Get 按 ID 获取文件夹元数据
func (s *FolderService) Get(userID, folderID string) (*domain.Folder, error) {
	for _, f := range s.readAll(userID) {
		if f.ID == folderID {
			f.EmailCount = len(s.store.ReadFolder(userID, domain.CustomFolderFile(f.ID)))
			return &f, nil
		}
	}
	return nil, ErrFolderNotFound
}

// Create 新建文件夹：写入元数据并创建空的邮件文件
func (s *FolderService) Create(userID string, input FolderInput) (*domain.Folder, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrFolderNameEmpty
	}

	// 元数据文件的读-改-写也要持锁，避免并发创建互相覆盖
	mu := s.store.Lock(userID, foldersDoc)
	mu.Lock()
	defer mu.Unlock()

	folder := domain.Folder{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Color:       input.Color,
	}

	folders := s.readAll(userID)
	folders = append(folders, folder)
	if err := s.store.WriteDoc(userID, foldersDoc, folders); err != nil {
		return nil, fmt.Errorf("failed to save folder metadata: %w", err)
	}

	if err := s.store.WriteFolder(userID, domain.CustomFolderFile(folder.ID), nil); err != nil {
		return nil, fmt.Errorf("failed to create folder file: %w", err)
	}

	s.log.Info("custom folder created",
		zap.String("user", userID), zap.String("folder", folder.ID), zap.String("name", folder.Name))
	return &folder, nil
}

// Update 更新文件夹名称/描述/颜色
func (s *FolderService) Update(userID, folderID string, input FolderInput) (*domain.Folder, error) {
	mu := s.store.Lock(userID, foldersDoc)
	mu.Lock()
	defer mu.Unlock()

	folders := s.readAll(userID)
	for i := range folders {
		if folders[i].ID != folderID {
			continue
		}
		if strings.TrimSpace(input.Name) != "" {
			folders[i].Name = strings.TrimSpace(input.Name)
		}
		folders[i].Description = input.Description
		folders[i].Color = input.Color

		if err := s.store.WriteDoc(userID, foldersDoc, folders); err != nil {
			return nil, fmt.Errorf("failed to save folder metadata: %w", err)
		}
		updated := folders[i]
		return &updated, nil
	}
	return nil, ErrFolderNotFound
}

// Delete 删除文件夹：先把其中邮件搬回收件箱，再删除邮件文件和元数据。
func (s *FolderService) Delete(userID, folderID string) error {
	mu := s.store.Lock(userID, foldersDoc)
	mu.Lock()
	defer mu.Unlock()

	folders := s.readAll(userID)
	idx := -1
	for i := range folders {
		if folders[i].ID == folderID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrFolderNotFound
	}

	folderFile := domain.CustomFolderFile(folderID)
	if err := s.moveAllToInbox(userID, folderFile); err != nil {
		return err
	}

	if err := s.store.DeleteFolderFile(userID, folderFile); err != nil {
		return err
	}

	folders = append(folders[:idx:idx], folders[idx+1:]...)
	if err := s.store.WriteDoc(userID, foldersDoc, folders); err != nil {
		return fmt.Errorf("failed to save folder metadata: %w", err)
	}

	s.log.Info("custom folder deleted",
		zap.String("user", userID), zap.String("folder", folderID))
	return nil
}

// ListMail 列出自定义文件夹中的邮件，走与系统文件夹相同的过滤/排序管线。
func (s *FolderService) ListMail(userID, folderID, sortKey string, criteria *domain.FilterCriteria) []domain.Mail {
	mails := s.store.ReadFolder(userID, domain.CustomFolderFile(folderID))
	if mailfilter.HasActiveFilters(criteria) {
		mails = mailfilter.Apply(mails, criteria)
	}
	if sortKey != "" {
		mails = s.sorts.Sort(mails, sortKey)
	}
	return mails
}

// moveAllToInbox 把文件夹中的邮件全部搬回收件箱（删除文件夹时）
func (s *FolderService) moveAllToInbox(userID, folderFile string) error {
	unlock := s.store.LockPair(userID, folderFile, domain.FolderInbox)
	defer unlock()

	mails := s.store.ReadFolder(userID, folderFile)
	if len(mails) == 0 {
		return nil
	}

	inbox := s.store.ReadFolder(userID, domain.FolderInbox)
	for _, m := range mails {
		moved := m.Clone()
		moved.CustomFolderID = ""
		moved.Folder = ""
		inbox = append(inbox, moved)
	}
	if err := s.store.WriteFolder(userID, domain.FolderInbox, inbox); err != nil {
		return fmt.Errorf("failed to move folder mail to inbox: %w", err)
	}
	return s.store.WriteFolder(userID, folderFile, nil)
}

func (s *FolderService) readAll(userID string) []domain.Folder {
	folders := []domain.Folder{}
	s.store.ReadDoc(userID, foldersDoc, &folders)
	return folders
}
