package policy

import (
	"testing"

	"github.com/farai-coder/parklee-backend-official/internal/domain"
)

func TestZoneAllowed(t *testing.T) {
	tests := []struct {
		role domain.Role
		zone domain.ZoneType
		want bool
	}{
		{domain.RoleStudent, domain.ZoneStudent, true},
		{domain.RoleStudent, domain.ZoneGeneral, true},
		{domain.RoleStudent, domain.ZoneStaff, false},
		{domain.RoleStudent, domain.ZoneVisitor, false},

		{domain.RoleStaff, domain.ZoneStaff, true},
		{domain.RoleStaff, domain.ZoneGeneral, true},
		{domain.RoleStaff, domain.ZoneStudent, false},
		{domain.RoleStaff, domain.ZoneVisitor, false},

		{domain.RoleVisitor, domain.ZoneVisitor, true},
		{domain.RoleVisitor, domain.ZoneGeneral, true},
		{domain.RoleVisitor, domain.ZoneStaff, false},
		{domain.RoleVisitor, domain.ZoneStudent, false},

		{domain.RoleAdmin, domain.ZoneStaff, true},
		{domain.RoleAdmin, domain.ZoneStudent, true},
		{domain.RoleAdmin, domain.ZoneVisitor, true},
		{domain.RoleAdmin, domain.ZoneGeneral, true},

		{domain.RoleVip, domain.ZoneStaff, true},
		{domain.RoleVip, domain.ZoneStudent, true},
		{domain.RoleVip, domain.ZoneVisitor, true},
		{domain.RoleVip, domain.ZoneGeneral, true},
	}

	for _, tt := range tests {
		if got := ZoneAllowed(tt.role, tt.zone); got != tt.want {
			t.Errorf("ZoneAllowed(%s, %s) = %t, muốn %t", tt.role, tt.zone, got, tt.want)
		}
	}
}

func TestZoneAllowedUnknownRole(t *testing.T) {
	if ZoneAllowed(domain.Role("ghost"), domain.ZoneGeneral) {
		t.Error("role không hợp lệ phải bị từ chối")
	}
}
