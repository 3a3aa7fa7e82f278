package models

// Module is the unit of role-based authorization.
type Module string

const (
	ModuleJob   Module = "job"
	ModuleStock Module = "stock"
	ModuleUser  Module = "user"
)

// Role is the level a user holds within a module. The zero value means no role.
type Role string

const (
	RoleNone  Role = ""
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the known levels, including RoleNone.
func (r Role) Valid() bool {
	switch r {
	case RoleNone, RoleUser, RoleAdmin:
		return true
	}
	return false
}

// Roles is the closed module -> role record stored on a user.
type Roles struct {
	Job   Role `gorm:"size:8" json:"job,omitempty"`
	Stock Role `gorm:"size:8" json:"stock,omitempty"`
	User  Role `gorm:"size:8" json:"user,omitempty"`
}

// For returns the role held for module m.
func (r Roles) For(m Module) Role {
	switch m {
	case ModuleJob:
		return r.Job
	case ModuleStock:
		return r.Stock
	case ModuleUser:
		return r.User
	}
	return RoleNone
}

// Valid reports whether every module holds a known role.
func (r Roles) Valid() bool {
	return r.Job.Valid() && r.Stock.Valid() && r.User.Valid()
}
