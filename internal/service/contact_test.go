package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webmail/backend/internal/domain"
	"webmail/backend/internal/storage/jsonfile"
)

func newContactFixture(t *testing.T) *ContactService {
	t.Helper()

	store, err := jsonfile.NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	require.NoError(t, store.ProvisionUser("alice"))

	return NewContactService(store, nil)
}

func addContact(t *testing.T, svc *ContactService, name, email string) *domain.Contact {
	t.Helper()
	contact := domain.Contact{Name: name}
	if email != "" {
		contact.Emails = []domain.ContactEmail{{Address: email, Primary: true}}
	}
	created, err := svc.Create("alice", contact)
	require.NoError(t, err)
	return created
}

func TestContactCreate_AssignsIDs(t *testing.T) {
	svc := newContactFixture(t)

	created, err := svc.Create("alice", domain.Contact{
		Name:   "Bob",
		Emails: []domain.ContactEmail{{Address: "bob@example.com"}},
		Phones: []domain.ContactPhone{{Number: "555-0100"}},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.Emails[0].ID)
	assert.NotEmpty(t, created.Phones[0].ID)
}

func TestContactGetUpdateDelete(t *testing.T) {
	svc := newContactFixture(t)
	created := addContact(t, svc, "Bob", "bob@example.com")

	got, err := svc.Get("alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.Name)

	updated, err := svc.Update("alice", created.ID, domain.Contact{
		ID:   "attempted-rewrite",
		Name: "Robert",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Robert", updated.Name)

	require.NoError(t, svc.Delete("alice", created.ID))
	_, err = svc.Get("alice", created.ID)
	assert.ErrorIs(t, err, ErrContactNotFound)

	assert.ErrorIs(t, svc.Delete("alice", created.ID), ErrContactNotFound)
	_, err = svc.Update("alice", "nope", domain.Contact{Name: "x"})
	assert.ErrorIs(t, err, ErrContactNotFound)
}

func TestContactList_SearchMatchesNameAndEmail(t *testing.T) {
	svc := newContactFixture(t)
	addContact(t, svc, "Bob Stone", "bob@example.com")
	addContact(t, svc, "Carol", "carol@rockmail.org")
	addContact(t, svc, "Dave", "dave@example.com")

	page := svc.List("alice", "STONE", "name-asc", 1, 20)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "Bob Stone", page.Contacts[0].Name)

	page = svc.List("alice", "rockmail", "name-asc", 1, 20)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "Carol", page.Contacts[0].Name)
}

func TestContactList_SortKeys(t *testing.T) {
	svc := newContactFixture(t)
	addContact(t, svc, "carol", "z@example.com")
	addContact(t, svc, "Bob", "a@example.com")
	addContact(t, svc, "", "m@example.com")

	names := func(page ContactPage) []string {
		out := make([]string, 0, len(page.Contacts))
		for _, c := range page.Contacts {
			out = append(out, c.Name)
		}
		return out
	}

	// 大小写不敏感，空名两个方向都排在末尾
	assert.Equal(t, []string{"Bob", "carol", ""}, names(svc.List("alice", "", "name-asc", 1, 20)))
	assert.Equal(t, []string{"carol", "Bob", ""}, names(svc.List("alice", "", "name-desc", 1, 20)))
	assert.Equal(t, []string{"Bob", "", "carol"}, names(svc.List("alice", "", "email-asc", 1, 20)))
	assert.Equal(t, []string{"carol", "", "Bob"}, names(svc.List("alice", "", "email-desc", 1, 20)))
}

func TestContactList_Pagination(t *testing.T) {
	svc := newContactFixture(t)
	for i := 0; i < 5; i++ {
		addContact(t, svc, fmt.Sprintf("contact-%d", i), "")
	}

	page := svc.List("alice", "", "name-asc", 2, 2)
	assert.Equal(t, 5, page.Total)
	require.Len(t, page.Contacts, 2)
	assert.Equal(t, "contact-2", page.Contacts[0].Name)

	// 越界页返回空列表而不是错误
	page = svc.List("alice", "", "name-asc", 9, 2)
	assert.Equal(t, 5, page.Total)
	assert.Empty(t, page.Contacts)

	// 非法分页参数回退默认值
	page = svc.List("alice", "", "name-asc", 0, 0)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
	assert.Len(t, page.Contacts, 5)
}

func TestContactCreate_ConcurrentCreatesAllPersisted(t *testing.T) {
	svc := newContactFixture(t)

	const contacts = 10
	var wg sync.WaitGroup
	for i := 0; i < contacts; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create("alice", domain.Contact{Name: fmt.Sprintf("contact-%d", i)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, contacts, svc.List("alice", "", "name-asc", 1, 50).Total)
}
