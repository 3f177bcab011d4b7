package service

import (
	"baitapvui_backend/internal/model"
	"baitapvui_backend/internal/util"
)

// canManage 管理员或资源所有者
func canManage(user *util.Claims, ownerID uint) bool {
	if user == nil {
		return false
	}
	return user.Role == model.Admin || user.UserID == ownerID
}
