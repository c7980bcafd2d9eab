package domain

// Contact 表示通讯录联系人（保存在 contacts.json）。
type Contact struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Emails   []ContactEmail `json:"email"`
	Phones   []ContactPhone `json:"phone"`
	Colour   string         `json:"colour"`
	Initials string         `json:"initials"`
}

// ContactEmail 联系人邮箱地址
type ContactEmail struct {
	ID      string `json:"id"`
	Address string `json:"address"`
	Primary bool   `json:"isPrimary"`
}

// ContactPhone 联系人电话
type ContactPhone struct {
	ID      string `json:"id"`
	Number  string `json:"number"`
	Primary bool   `json:"isPrimary"`
}

// PrimaryEmail 返回主邮箱地址，没有标记时取第一个。
func (c *Contact) PrimaryEmail() string {
	for _, e := range c.Emails {
		if e.Primary {
			return e.Address
		}
	}
	if len(c.Emails) > 0 {
		return c.Emails[0].Address
	}
	return ""
}
