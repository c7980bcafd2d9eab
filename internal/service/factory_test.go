package service

import (
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webmail/backend/internal/domain"
	"webmail/backend/internal/storage/jsonfile"
)

func newFactoryFixture(t *testing.T) *MailFactory {
	t.Helper()

	seq, err := jsonfile.NewSequence(filepath.Join(t.TempDir(), "mail_counter"), nil)
	require.NoError(t, err)
	return NewMailFactory(seq)
}

func TestMailFactory_AssignsIncrementingIDs(t *testing.T) {
	factory := newFactoryFixture(t)

	first, err := factory.New(domain.MailContent{Subject: "first"})
	require.NoError(t, err)
	second, err := factory.New(domain.MailContent{Subject: "second"})
	require.NoError(t, err)

	assert.Equal(t, first.ID+1, second.ID)
}

func TestMailFactory_PreviewKeepsMultibyteRunesIntact(t *testing.T) {
	factory := newFactoryFixture(t)

	body := strings.Repeat("邮件正文", 50)
	mail, err := factory.New(domain.MailContent{Subject: "中文", Body: body})
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(mail.Preview))
	assert.Equal(t, PreviewLength, utf8.RuneCountInString(mail.Preview))
	assert.Equal(t, string([]rune(body)[:PreviewLength]), mail.Preview)
	assert.Equal(t, body, mail.Body)
}

func TestMailFactory_ShortBodyPreviewUnchanged(t *testing.T) {
	factory := newFactoryFixture(t)

	mail, err := factory.New(domain.MailContent{Body: "短正文"})
	require.NoError(t, err)

	assert.Equal(t, "短正文", mail.Preview)
}

func TestMailFactory_MarksAttachments(t *testing.T) {
	factory := newFactoryFixture(t)

	plain, err := factory.New(domain.MailContent{})
	require.NoError(t, err)
	assert.False(t, plain.HasAttachment)

	withFile, err := factory.New(domain.MailContent{
		Attachments: []domain.Attachment{{Filename: "a.txt"}},
	})
	require.NoError(t, err)
	assert.True(t, withFile.HasAttachment)
}
