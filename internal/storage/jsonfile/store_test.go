package jsonfile

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webmail/backend/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	return store
}

func TestStore_WriteAndReadFolder(t *testing.T) {
	store := newTestStore(t)

	mails := []domain.Mail{
		{ID: 1, From: "alice", Subject: "hello"},
		{ID: 2, From: "bob", Subject: "world"},
	}
	require.NoError(t, store.WriteFolder("user1", domain.FolderInbox, mails))

	got := store.ReadFolder("user1", domain.FolderInbox)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].From)
	assert.Equal(t, 2, got[1].ID)
}

func TestStore_ReadFolder_MissingFileReturnsEmpty(t *testing.T) {
	store := newTestStore(t)

	got := store.ReadFolder("nobody", domain.FolderInbox)
	assert.Empty(t, got)
}

func TestStore_ReadFolder_CorruptFileReturnsEmpty(t *testing.T) {
	store := newTestStore(t)

	dir := filepath.Join(store.BasePath(), "user1")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inbox.json"), []byte("{not json"), 0644))

	got := store.ReadFolder("user1", domain.FolderInbox)
	assert.Empty(t, got)
}

func TestStore_ProvisionUser(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.ProvisionUser("newuser"))
	assert.True(t, store.UserExists("newuser"))

	for _, name := range []string{"inbox", "sent", "draft", "trash", "contacts", "folders"} {
		_, err := os.Stat(filepath.Join(store.BasePath(), "newuser", name+".json"))
		assert.NoError(t, err, "expected %s.json to exist", name)
	}
}

func TestStore_ProvisionUser_DoesNotOverwrite(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.ProvisionUser("user1"))
	require.NoError(t, store.WriteFolder("user1", domain.FolderInbox, []domain.Mail{{ID: 7}}))

	// 再次开通不能清空已有数据
	require.NoError(t, store.ProvisionUser("user1"))
	got := store.ReadFolder("user1", domain.FolderInbox)
	require.Len(t, got, 1)
	assert.Equal(t, 7, got[0].ID)
}

func TestStore_ListUsers(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.ProvisionUser("alice"))
	require.NoError(t, store.ProvisionUser("bob"))

	users := store.ListUsers()
	assert.ElementsMatch(t, []string{"alice", "bob"}, users)
}

func TestStore_CustomFolderFiles(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.ProvisionUser("user1"))
	require.NoError(t, store.WriteFolder("user1", "folder_abc", nil))
	require.NoError(t, store.WriteFolder("user1", "folder_def", []domain.Mail{{ID: 1}}))

	folders := store.CustomFolderFiles("user1")
	assert.ElementsMatch(t, []string{"folder_abc", "folder_def"}, folders)
}

func TestStore_DeleteFolderFile(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.WriteFolder("user1", "folder_abc", []domain.Mail{{ID: 1}}))
	require.NoError(t, store.DeleteFolderFile("user1", "folder_abc"))
	assert.Empty(t, store.CustomFolderFiles("user1"))

	// 删除不存在的文件不报错
	assert.NoError(t, store.DeleteFolderFile("user1", "folder_missing"))
}

func TestStore_ReadWriteDoc(t *testing.T) {
	store := newTestStore(t)

	contacts := []domain.Contact{{ID: "c1", Name: "Alice"}}
	require.NoError(t, store.WriteDoc("user1", "contacts", contacts))

	var got []domain.Contact
	require.NoError(t, store.ReadDoc("user1", "contacts", &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Alice", got[0].Name)
}

func TestStore_ReadDoc_MissingKeepsZeroValue(t *testing.T) {
	store := newTestStore(t)

	got := []domain.Contact{}
	require.NoError(t, store.ReadDoc("user1", "contacts", &got))
	assert.Empty(t, got)
}

func TestStore_LockPair_OppositeOrderNoDeadlock(t *testing.T) {
	store := newTestStore(t)

	// 两个协程以相反的参数顺序加同一对锁，
	// 锁按字典序获取，不会互相等待。
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unlock := store.LockPair("user1", domain.FolderInbox, domain.FolderTrash)
			unlock()
		}()
		go func() {
			defer wg.Done()
			unlock := store.LockPair("user1", domain.FolderTrash, domain.FolderInbox)
			unlock()
		}()
	}
	wg.Wait()
}

func TestStore_ConcurrentWritesSameFolder(t *testing.T) {
	store := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			lock := store.Lock("user1", domain.FolderInbox)
			lock.Lock()
			defer lock.Unlock()

			mails := store.ReadFolder("user1", domain.FolderInbox)
			mails = append(mails, domain.Mail{ID: n})
			assert.NoError(t, store.WriteFolder("user1", domain.FolderInbox, mails))
		}(i)
	}
	wg.Wait()

	got := store.ReadFolder("user1", domain.FolderInbox)
	assert.Len(t, got, 20)
}

func TestStore_Health(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Health())
}
