package domain

// 系统文件夹名称。邮件的真实位置由它所在的文件决定，
// Folder/CustomFolderID 只是冗余标注，所有写操作必须保持两者一致。
const (
	FolderInbox = "inbox"
	FolderSent  = "sent"
	FolderDraft = "draft"
	FolderTrash = "trash"
)

// SystemFolders 固定的系统文件夹集合（每个用户开通时创建）
var SystemFolders = []string{FolderInbox, FolderSent, FolderDraft, FolderTrash}

// IsSystemFolder 判断名称是否为系统文件夹
func IsSystemFolder(name string) bool {
	switch name {
	case FolderInbox, FolderSent, FolderDraft, FolderTrash:
		return true
	}
	return false
}

// 邮件优先级（数字越小越紧急）
const (
	PriorityUrgent = 1
	PriorityHigh   = 2
	PriorityMedium = 3
	PriorityLow    = 4
)

// Mail 表示一封邮件记录。
type Mail struct {
	ID            int          `json:"id"`
	To            []string     `json:"to"`
	From          string       `json:"from"`
	Subject       string       `json:"subject"`
	Body          string       `json:"body"`
	Preview       string       `json:"preview"` // 正文前 100 字符，创建时计算一次
	Starred       bool         `json:"starred"`
	HasAttachment bool         `json:"hasAttachment"`
	Timestamp     LocalTime    `json:"timestamp"`
	Priority      int          `json:"priority"`
	Attachments   []Attachment `json:"attachments"`
	TrashedAt     *LocalTime   `json:"trashedAt,omitempty"` // 仅进入回收站时设置，用于保留期清理
	// Folder 标注记录来源的物理文件夹（聚合视图返回时填写，不作为位置依据）
	Folder string `json:"folder,omitempty"`
	// CustomFolderID 为空表示系统文件夹，否则为自定义文件夹 ID
	CustomFolderID string `json:"customFolderId,omitempty"`
}

// Clone 返回值拷贝，切片做深拷贝，避免投递副本之间共享引用。
func (m Mail) Clone() Mail {
	cloned := m
	if m.To != nil {
		cloned.To = append([]string(nil), m.To...)
	}
	if m.Attachments != nil {
		cloned.Attachments = append([]Attachment(nil), m.Attachments...)
	}
	return cloned
}

// Attachment 表示附件描述信息。
type Attachment struct {
	Filename string `json:"filename"`
	FilePath string `json:"filePath"` // 上传阶段为 base64 内容，落盘后替换为存储路径
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"` // 字节
}

// MailContent 是撰写/存草稿的输入。
type MailContent struct {
	Recipients  []string     `json:"recipients"` // 有序，逐个投递
	Subject     string       `json:"subject"`
	Body        string       `json:"body"`
	Priority    int          `json:"priority"`
	Attachments []Attachment `json:"attachments"`
}
