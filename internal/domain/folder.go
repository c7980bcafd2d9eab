package domain

// CustomFolderPrefix 自定义文件夹文件名前缀，物理文件为 folder_<id>.json
const CustomFolderPrefix = "folder_"

// Folder 表示用户自定义文件夹的元数据（保存在 folders.json）。
type Folder struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	EmailCount  int    `json:"emailCount"`
}

// CustomFolderFile 由文件夹 ID 得到物理文件夹名（不含 .json 后缀）
func CustomFolderFile(folderID string) string {
	return CustomFolderPrefix + folderID
}
