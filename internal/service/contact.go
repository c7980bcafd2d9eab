package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"webmail/backend/internal/domain"
	"webmail/backend/internal/storage/jsonfile"
)

// ErrContactNotFound 联系人不存在
var ErrContactNotFound = errors.New("contact not found")

// contactsDoc 联系人文档名（contacts.json）
const contactsDoc = "contacts"

// ContactService 管理用户通讯录，数据保存在 contacts.json
type ContactService struct {
	store *jsonfile.Store
	log   *zap.Logger
}

// NewContactService 创建联系人服务
func NewContactService(store *jsonfile.Store, log *zap.Logger) *ContactService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContactService{store: store, log: log}
}

// ContactPage 联系人分页结果
type ContactPage struct {
	Contacts []domain.Contact `json:"contacts"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}

// List 返回分页联系人列表，支持按姓名/邮箱搜索与排序。
// sortKey 取值 name-asc/name-desc/email-asc/email-desc，未知取 name-asc。
func (s *ContactService) List(userID, search, sortKey string, page, pageSize int) ContactPage {
	contacts := s.readAll(userID)

	if search != "" {
		filtered := make([]domain.Contact, 0, len(contacts))
		for _, c := range contacts {
			if containsFoldContact(c, search) {
				filtered = append(filtered, c)
			}
		}
		contacts = filtered
	}

	sortContacts(contacts, sortKey)

	total := len(contacts)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return ContactPage{
		Contacts: contacts[start:end],
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
}

// Get 按 ID 获取联系人
func (s *ContactService) Get(userID, contactID string) (*domain.Contact, error) {
	for _, c := range s.readAll(userID) {
		if c.ID == contactID {
			return &c, nil
		}
	}
	return nil, ErrContactNotFound
}

// Create 新建联系人
func (s *ContactService) Create(userID string, contact domain.Contact) (*domain.Contact, error) {
	// contacts.json 的读-改-写持锁，避免并发写丢条目
	mu := s.store.Lock(userID, contactsDoc)
	mu.Lock()
	defer mu.Unlock()

	contact.ID = uuid.NewString()
	fillContactIDs(&contact)

	contacts := s.readAll(userID)
	contacts = append(contacts, contact)
	if err := s.store.WriteDoc(userID, contactsDoc, contacts); err != nil {
		return nil, fmt.Errorf("failed to save contacts: %w", err)
	}

	s.log.Info("contact created", zap.String("user", userID), zap.String("contact", contact.ID))
	return &contact, nil
}

// Update 全量更新联系人（ID 不可变）
func (s *ContactService) Update(userID, contactID string, contact domain.Contact) (*domain.Contact, error) {
	mu := s.store.Lock(userID, contactsDoc)
	mu.Lock()
	defer mu.Unlock()

	contacts := s.readAll(userID)
	for i := range contacts {
		if contacts[i].ID != contactID {
			continue
		}
		contact.ID = contactID
		fillContactIDs(&contact)
		contacts[i] = contact
		if err := s.store.WriteDoc(userID, contactsDoc, contacts); err != nil {
			return nil, fmt.Errorf("failed to save contacts: %w", err)
		}
		return &contact, nil
	}
	return nil, ErrContactNotFound
}

// Delete 删除联系人
func (s *ContactService) Delete(userID, contactID string) error {
	mu := s.store.Lock(userID, contactsDoc)
	mu.Lock()
	defer mu.Unlock()

	contacts := s.readAll(userID)
	for i := range contacts {
		if contacts[i].ID != contactID {
			continue
		}
		contacts = append(contacts[:i:i], contacts[i+1:]...)
		if err := s.store.WriteDoc(userID, contactsDoc, contacts); err != nil {
			return fmt.Errorf("failed to save contacts: %w", err)
		}
		s.log.Info("contact deleted", zap.String("user", userID), zap.String("contact", contactID))
		return nil
	}
	return ErrContactNotFound
}

func (s *ContactService) readAll(userID string) []domain.Contact {
	contacts := []domain.Contact{}
	s.store.ReadDoc(userID, contactsDoc, &contacts)
	return contacts
}

// fillContactIDs 给缺少 ID 的邮箱/电话条目补上 UUID
func fillContactIDs(c *domain.Contact) {
	for i := range c.Emails {
		if c.Emails[i].ID == "" {
			c.Emails[i].ID = uuid.NewString()
		}
	}
	for i := range c.Phones {
		if c.Phones[i].ID == "" {
			c.Phones[i].ID = uuid.NewString()
		}
	}
}

func containsFoldContact(c domain.Contact, term string) bool {
	if strings.Contains(strings.ToLower(c.Name), strings.ToLower(term)) {
		return true
	}
	for _, e := range c.Emails {
		if strings.Contains(strings.ToLower(e.Address), strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// sortContacts 按姓名或主邮箱排序，空值排在末尾。
func sortContacts(contacts []domain.Contact, sortKey string) {
	key := func(c domain.Contact) string { return c.Name }
	desc := false
	switch sortKey {
	case "name-desc":
		desc = true
	case "email-asc":
		key = func(c domain.Contact) string { return c.PrimaryEmail() }
	case "email-desc":
		key = func(c domain.Contact) string { return c.PrimaryEmail() }
		desc = true
	}

	sort.SliceStable(contacts, func(i, j int) bool {
		a, b := key(contacts[i]), key(contacts[j])
		if a == "" {
			return false
		}
		if b == "" {
			return true
		}
		if desc {
			return strings.ToLower(a) > strings.ToLower(b)
		}
		return strings.ToLower(a) < strings.ToLower(b)
	})
}
