// Package jsonfile 实现基于每用户 JSON 文件的邮箱存储。
// 每个文件夹是一个 JSON 数组文件：<base>/<userID>/<folder>.json，
// 自定义文件夹使用 folder_<id>.json 命名，与系统文件夹走同一套读写原语。
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"webmail/backend/internal/domain"
)

// 用户开通时创建的默认文件（邮件文件夹 + 通讯录 + 文件夹元数据）
var defaultUserFiles = []string{
	domain.FolderInbox, domain.FolderSent, domain.FolderDraft, domain.FolderTrash,
	"contacts", "folders",
}

// Store 文件系统邮箱存储。
//
// 锁模型：按 (userID, folder) 粒度在 locks 中按需创建互斥锁，
// 不同用户、不同文件夹的操作互不阻塞；任何读-改-写序列必须
// 全程持有对应的锁，纯读取查询可以不加锁（接受最后写者胜出）。
type Store struct {
	basePath string
	locks    sync.Map // "userID/folder" -> *sync.Mutex
	log      *zap.Logger
}

// NewStore 创建文件系统存储实例
func NewStore(basePath string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &Store{
		basePath: basePath,
		log:      log,
	}, nil
}

// BasePath 返回存储根目录
func (s *Store) BasePath() string {
	return s.basePath
}

// Lock 返回指定用户文件夹的互斥锁（按需创建）。
func (s *Store) Lock(userID, folder string) *sync.Mutex {
	key := userID + "/" + folder
	if mu, ok := s.locks.Load(key); ok {
		return mu.(*sync.Mutex)
	}
	mu, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// LockPair 按键的字典序获取两个文件夹的锁，保证跨文件操作的加锁顺序
// 全局一致，避免死锁。返回的解锁函数按相反顺序释放。
func (s *Store) LockPair(userID, folderA, folderB string) func() {
	if folderA == folderB {
		mu := s.Lock(userID, folderA)
		mu.Lock()
		return mu.Unlock
	}
	first, second := folderA, folderB
	if second < first {
		first, second = second, first
	}
	muFirst := s.Lock(userID, first)
	muSecond := s.Lock(userID, second)
	muFirst.Lock()
	muSecond.Lock()
	return func() {
		muSecond.Unlock()
		muFirst.Unlock()
	}
}

// folderPath 文件夹文件的完整路径
func (s *Store) folderPath(userID, folder string) string {
	return filepath.Join(s.basePath, userID, folder+".json")
}

// ReadFolder 读取一个文件夹的全部邮件。
// 文件不存在、读取失败或 JSON 损坏时一律返回空列表，不向上抛错；
// 损坏与缺失不作区分，属于有意保留的既有行为。
func (s *Store) ReadFolder(userID, folder string) []domain.Mail {
	path := s.folderPath(userID, folder)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("failed to read folder file, treating as empty",
				zap.String("path", path), zap.Error(err))
		}
		return []domain.Mail{}
	}

	var mails []domain.Mail
	if err := json.Unmarshal(data, &mails); err != nil {
		s.log.Warn("malformed folder file, treating as empty",
			zap.String("path", path), zap.Error(err))
		return []domain.Mail{}
	}
	if mails == nil {
		return []domain.Mail{}
	}
	return mails
}

// WriteFolder 整体覆盖写入一个文件夹。
// 先写临时文件再原子改名，单个文件内不会出现半截内容。
func (s *Store) WriteFolder(userID, folder string, mails []domain.Mail) error {
	path := s.folderPath(userID, folder)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create user directory: %w", err)
	}

	if mails == nil {
		mails = []domain.Mail{}
	}
	data, err := json.MarshalIndent(mails, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal folder: %w", err)
	}

	return s.replaceFile(path, data)
}

// replaceFile 临时文件 + rename 的原子覆盖写
func (s *Store) replaceFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}

// UserExists 判断用户邮箱目录是否已开通
func (s *Store) UserExists(userID string) bool {
	info, err := os.Stat(filepath.Join(s.basePath, userID))
	return err == nil && info.IsDir()
}

// ProvisionUser 开通用户目录并创建默认的空文件
// （inbox/sent/draft/trash/contacts/folders）。已有文件不覆盖。
func (s *Store) ProvisionUser(userID string) error {
	userDir := filepath.Join(s.basePath, userID)
	if err := os.MkdirAll(userDir, 0755); err != nil {
		return fmt.Errorf("failed to create user directory: %w", err)
	}

	for _, name := range defaultUserFiles {
		path := filepath.Join(userDir, name+".json")
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := s.replaceFile(path, []byte("[]")); err != nil {
			return fmt.Errorf("failed to create %s.json: %w", name, err)
		}
	}

	s.log.Info("provisioned user mailbox", zap.String("user", userID))
	return nil
}

// ListUsers 列出所有已开通的用户（目录名即用户 ID）
func (s *Store) ListUsers() []string {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		s.log.Warn("failed to list users", zap.Error(err))
		return nil
	}
	users := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			users = append(users, e.Name())
		}
	}
	return users
}

// CustomFolderFiles 列出用户所有自定义文件夹的文件夹名
// （形如 folder_<id>，不含 .json 后缀）。
func (s *Store) CustomFolderFiles(userID string) []string {
	entries, err := os.ReadDir(filepath.Join(s.basePath, userID))
	if err != nil {
		return nil
	}
	var folders []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, domain.CustomFolderPrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		folders = append(folders, strings.TrimSuffix(name, ".json"))
	}
	return folders
}

// DeleteFolderFile 删除一个文件夹文件（自定义文件夹删除时使用）
func (s *Store) DeleteFolderFile(userID, folder string) error {
	path := s.folderPath(userID, folder)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete folder file: %w", err)
	}
	return nil
}

// ========== 通用 JSON 文档读写 ==========
// 通讯录、文件夹元数据、用户资料都通过同一入口持久化。

// ReadDoc 读取用户目录下的任意 JSON 文档到 out。
// 文件不存在时不修改 out（调用方预置零值），损坏时同样视为缺失。
func (s *Store) ReadDoc(userID, name string, out any) error {
	path := filepath.Join(s.basePath, userID, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		s.log.Warn("failed to read document, treating as absent",
			zap.String("path", path), zap.Error(err))
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.log.Warn("malformed document, treating as absent",
			zap.String("path", path), zap.Error(err))
	}
	return nil
}

// WriteDoc 整体覆盖写入用户目录下的任意 JSON 文档
func (s *Store) WriteDoc(userID, name string, v any) error {
	path := filepath.Join(s.basePath, userID, name+".json")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create user directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	return s.replaceFile(path, data)
}

// Health 检查存储根目录是否可写（健康检查探针使用）
func (s *Store) Health() error {
	probe := filepath.Join(s.basePath, ".health")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("storage not writable: %w", err)
	}
	os.Remove(probe)
	return nil
}
