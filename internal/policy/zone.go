package policy

import "github.com/farai-coder/parklee-backend-official/internal/domain"

// Bảng phân quyền role -> zone. Liệt kê tường minh toàn bộ ma trận thay vì
// so sánh chuỗi rải rác, để policy có thể kiểm thử đầy đủ. Quy tắc: staff,
// student và visitor chỉ được đỗ trong zone cùng loại hoặc zone general;
// admin và vip không bị giới hạn zone.
var zoneAccess = map[domain.Role]map[domain.ZoneType]bool{
	domain.RoleStudent: {
		domain.ZoneStudent: true,
		domain.ZoneGeneral: true,
		domain.ZoneStaff:   false,
		domain.ZoneVisitor: false,
	},
	domain.RoleStaff: {
		domain.ZoneStaff:   true,
		domain.ZoneGeneral: true,
		domain.ZoneStudent: false,
		domain.ZoneVisitor: false,
	},
	domain.RoleVisitor: {
		domain.ZoneVisitor: true,
		domain.ZoneGeneral: true,
		domain.ZoneStaff:   false,
		domain.ZoneStudent: false,
	},
	domain.RoleAdmin: {
		domain.ZoneStaff:   true,
		domain.ZoneStudent: true,
		domain.ZoneVisitor: true,
		domain.ZoneGeneral: true,
	},
	domain.RoleVip: {
		domain.ZoneStaff:   true,
		domain.ZoneStudent: true,
		domain.ZoneVisitor: true,
		domain.ZoneGeneral: true,
	},
}

// ZoneAllowed cho biết role có được chiếm chỗ trong zone loại zoneType không.
// Role không có trong bảng (không hợp lệ) bị từ chối.
func ZoneAllowed(role domain.Role, zoneType domain.ZoneType) bool {
	perms, ok := zoneAccess[role]
	if !ok {
		return false
	}
	return perms[zoneType]
}
