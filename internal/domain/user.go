package domain

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
	RoleVisitor Role = "visitor"
	RoleVip     Role = "vip"
)

// Roles là tập vai trò hợp lệ, dùng để validate input.
var Roles = []Role{RoleStudent, RoleStaff, RoleAdmin, RoleVisitor, RoleVip}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
	UserPending  UserStatus = "pending"
	UserDisabled UserStatus = "disabled"
)

type User struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Surname      string     `json:"surname"`
	Gender       string     `json:"gender"`
	Email        string     `json:"email"`
	PhoneNumber  string     `json:"phone_number"`
	LicensePlate string     `json:"license_plate"`
	Role         Role       `json:"role"`
	PasswordHash string     `json:"-"` // Không bao giờ trả về password hash trong JSON
	Status       UserStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type CreateUserDTO struct {
	Name         string `json:"name" binding:"required"`
	Surname      string `json:"surname" binding:"required"`
	Gender       string `json:"gender" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	PhoneNumber  string `json:"phone_number" binding:"required"`
	LicensePlate string `json:"license_plate" binding:"required"`
	Role         string `json:"role,omitempty"` // Mặc định "student" nếu bỏ trống
}

type SetPasswordDTO struct {
	UserID   int    `json:"user_id" binding:"required"`
	Password string `json:"password" binding:"required,min=6,max=100"`
}

type ChangePasswordDTO struct {
	UserID      int    `json:"user_id" binding:"required"`
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=100"`
}

type LoginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponseDTO struct {
	Token    string     `json:"token"`
	UserID   int        `json:"user_id"`
	Email    string     `json:"email"`
	Role     Role       `json:"role"`
	Status   UserStatus `json:"status"`
}
