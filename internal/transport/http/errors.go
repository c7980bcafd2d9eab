package httptransport

import (
	"webmail/backend/internal/auth"
	"webmail/backend/internal/service"
)

// 错误消息映射表（业务错误 -> 中文消息）
var errorMessages = map[error]string{
	// 邮件错误
	service.ErrMailNotFound:      "邮件不存在",
	service.ErrRecipientNotFound: "收件人不存在",

	// 文件夹错误
	service.ErrFolderNotFound:  "文件夹不存在",
	service.ErrFolderNameEmpty: "文件夹名称不能为空",

	// 联系人错误
	service.ErrContactNotFound: "联系人不存在",

	// 资料错误
	service.ErrUserNotFound:  "用户不存在",
	service.ErrNothingToUndo: "没有可撤销的修改",
	service.ErrNothingToRedo: "没有可重做的修改",

	// 附件错误
	service.ErrAttachmentTooLarge: "附件超出大小限制",
	service.ErrAttachmentEmpty:    "附件内容不能为空",

	// 认证错误
	auth.ErrInvalidCredentials: "邮箱或密码错误",
	auth.ErrUserExists:         "该邮箱已被注册",
	auth.ErrInvalidEmail:       "邮箱格式无效",
	auth.ErrWeakPassword:       "密码至少需要8个字符",
}

// GetErrorMessage 获取错误的中文消息
func GetErrorMessage(err error) string {
	if msg, ok := errorMessages[err]; ok {
		return msg
	}
	return err.Error()
}

// 通用错误消息
const (
	// 请求相关
	MsgInvalidRequest = "请求参数格式错误"
	MsgInvalidMailID  = "邮件ID格式无效"

	// 认证相关
	MsgAuthRequired = "需要登录认证"
	MsgTokenInvalid = "无效的访问令牌"

	// 邮件相关
	MsgMailListFailed    = "获取邮件列表失败"
	MsgMailComposeFailed = "发送邮件失败"
	MsgMailMoveFailed    = "移动邮件失败"
	MsgMailDeleteFailed  = "删除邮件失败"
	MsgDraftSaveFailed   = "保存草稿失败"

	// 文件夹相关
	MsgFolderCreateFailed = "创建文件夹失败"
	MsgFolderUpdateFailed = "更新文件夹失败"
	MsgFolderDeleteFailed = "删除文件夹失败"

	// 联系人相关
	MsgContactSaveFailed = "保存联系人失败"

	// 资料相关
	MsgProfileUpdateFailed = "更新资料失败"

	// 服务器错误
	MsgInternalError = "服务器内部错误，请稍后重试"
)
