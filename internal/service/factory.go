package service

import (
	"webmail/backend/internal/domain"
	"webmail/backend/internal/storage/jsonfile"
)

// PreviewLength 正文摘要的最大字符数
const PreviewLength = 100

// MailFactory 把撰写/草稿输入构造成可持久化的邮件记录，
// 负责分配持久化的自增 ID 和派生字段（摘要、附件标记、时间戳）。
type MailFactory struct {
	seq *jsonfile.Sequence
}

// NewMailFactory 创建邮件工厂
func NewMailFactory(seq *jsonfile.Sequence) *MailFactory {
	return &MailFactory{seq: seq}
}

// New 创建一封新邮件。主题、正文、收件人、优先级、附件原样拷贝；
// Preview 取正文前 100 个字符，仅在创建时计算一次。
func (f *MailFactory) New(content domain.MailContent) (domain.Mail, error) {
	id, err := f.seq.Next()
	if err != nil {
		return domain.Mail{}, err
	}

	preview := content.Body
	// 按字符截断，不能从多字节字符中间切开
	if runes := []rune(preview); len(runes) > PreviewLength {
		preview = string(runes[:PreviewLength])
	}

	return domain.Mail{
		ID:            id,
		To:            content.Recipients,
		Subject:       content.Subject,
		Body:          content.Body,
		Preview:       preview,
		Starred:       false,
		HasAttachment: len(content.Attachments) > 0,
		Timestamp:     domain.Now(),
		Priority:      content.Priority,
		Attachments:   content.Attachments,
	}, nil
}
