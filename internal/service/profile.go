package service

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"webmail/backend/internal/domain"
	"webmail/backend/internal/storage/jsonfile"
)

var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrNothingToUndo 撤销栈为空
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrNothingToRedo 重做栈为空
	ErrNothingToRedo = errors.New("nothing to redo")
)

// infoDoc 账户信息文档名（info.json）
const infoDoc = "info"

// historyLimit 每个用户撤销栈保留的最大快照数
const historyLimit = 50

// ProfileService 管理账户资料的读取与修改，支持撤销/重做。
// 历史快照只保存在内存中，进程重启后清空。
type ProfileService struct {
	store *jsonfile.Store
	log   *zap.Logger

	mu      sync.Mutex
	history map[string]*profileHistory
}

type profileHistory struct {
	undo []domain.UserInfo
	redo []domain.UserInfo
}

// NewProfileService 创建资料服务
func NewProfileService(store *jsonfile.Store, log *zap.Logger) *ProfileService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileService{
		store:   store,
		log:     log,
		history: make(map[string]*profileHistory),
	}
}

// Get 读取用户资料，密码字段在返回前清空。
func (s *ProfileService) Get(userID string) (*domain.UserInfo, error) {
	info, err := s.read(userID)
	if err != nil {
		return nil, err
	}
	info.Password = ""
	return info, nil
}

// ProfileUpdate 可更新的资料字段，nil 表示保持原值。
type ProfileUpdate struct {
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	PhoneNumber  *string `json:"phoneNumber"`
	BirthDate    *string `json:"birthDate"`
	JobTitle     *string `json:"jobTitle"`
	Phone        *string `json:"phone"`
	Bio          *string `json:"bio"`
	ProfilePhoto *string `json:"profilePhoto"`
}

// Update 应用字段更新：先把当前状态压入撤销栈并清空重做栈，再落盘。
func (s *ProfileService) Update(userID string, update ProfileUpdate) (*domain.UserInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := s.read(userID)
	if err != nil {
		return nil, err
	}

	h := s.historyFor(userID)
	h.push(*info)
	h.redo = nil

	applyUpdate(info, update)
	if err := s.write(userID, info); err != nil {
		return nil, err
	}

	out := *info
	out.Password = ""
	return &out, nil
}

// Undo 回退到上一份资料快照，当前状态进入重做栈。
func (s *ProfileService) Undo(userID string) (*domain.UserInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.historyFor(userID)
	if len(h.undo) == 0 {
		return nil, ErrNothingToUndo
	}

	current, err := s.read(userID)
	if err != nil {
		return nil, err
	}

	prev := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, *current)

	if err := s.write(userID, &prev); err != nil {
		return nil, err
	}

	out := prev
	out.Password = ""
	return &out, nil
}

// Redo 重新应用最近一次被撤销的修改。
func (s *ProfileService) Redo(userID string) (*domain.UserInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.historyFor(userID)
	if len(h.redo) == 0 {
		return nil, ErrNothingToRedo
	}

	current, err := s.read(userID)
	if err != nil {
		return nil, err
	}

	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.push(*current)

	if err := s.write(userID, &next); err != nil {
		return nil, err
	}

	out := next
	out.Password = ""
	return &out, nil
}

func (s *ProfileService) historyFor(userID string) *profileHistory {
	h, ok := s.history[userID]
	if !ok {
		h = &profileHistory{}
		s.history[userID] = h
	}
	return h
}

func (h *profileHistory) push(snapshot domain.UserInfo) {
	h.undo = append(h.undo, snapshot)
	if len(h.undo) > historyLimit {
		h.undo = h.undo[len(h.undo)-historyLimit:]
	}
}

func (s *ProfileService) read(userID string) (*domain.UserInfo, error) {
	if !s.store.UserExists(userID) {
		return nil, ErrUserNotFound
	}
	info := domain.UserInfo{}
	if err := s.store.ReadDoc(userID, infoDoc, &info); err != nil {
		return nil, fmt.Errorf("failed to read user info: %w", err)
	}
	return &info, nil
}

func (s *ProfileService) write(userID string, info *domain.UserInfo) error {
	if err := s.store.WriteDoc(userID, infoDoc, info); err != nil {
		return fmt.Errorf("failed to save user info: %w", err)
	}
	s.log.Info("profile updated", zap.String("user", userID))
	return nil
}

func applyUpdate(info *domain.UserInfo, u ProfileUpdate) {
	if u.FirstName != nil {
		info.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		info.LastName = *u.LastName
	}
	if u.PhoneNumber != nil {
		info.PhoneNumber = *u.PhoneNumber
	}
	if u.BirthDate != nil {
		info.BirthDate = *u.BirthDate
	}
	if u.JobTitle != nil {
		info.Extra.JobTitle = *u.JobTitle
	}
	if u.Phone != nil {
		info.Extra.Phone = *u.Phone
	}
	if u.Bio != nil {
		info.Extra.Bio = *u.Bio
	}
	if u.ProfilePhoto != nil {
		info.Extra.ProfilePhoto = *u.ProfilePhoto
	}
}
