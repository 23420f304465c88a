package rbac

import (
	"tenantry/common"

	"github.com/fundwit/go-commons/types"
)

type Role struct {
	ID          types.ID `json:"id" gorm:"primary_key"`
	Name        string   `json:"name" gorm:"unique_index:uni_role_name;size:64;not null"`
	Description string   `json:"description" gorm:"size:255"`

	CreationTime types.Timestamp `json:"creation_time" sql:"type:DATETIME(6) NOT NULL"`
}

type Domain struct {
	ID          types.ID `json:"id" gorm:"primary_key"`
	Name        string   `json:"name" gorm:"unique_index:uni_domain_name;size:255;not null"`
	Description string   `json:"description" gorm:"size:255"`

	CreationTime types.Timestamp `json:"creation_time" sql:"type:DATETIME(6) NOT NULL"`
}

// UserRole binds a user to a role. No unique index covers the nullable scope
// columns; uniqueness is checked by AssignRole. Scope columns use a binary
// collation so SQL comparisons agree with Scope.Matches.
type UserRole struct {
	ID       types.ID `json:"id" gorm:"primary_key"`
	RoleID   types.ID `json:"role_id" gorm:"index:idx_user_role"`
	TenantID *string  `json:"tenant_id" gorm:"type:VARCHAR(64) COLLATE utf8mb4_bin"`
	UserID   types.ID `json:"user_id" gorm:"index:idx_user_role"`
	Domain   *string  `json:"domain" gorm:"type:VARCHAR(255) COLLATE utf8mb4_bin"`

	CreationTime types.Timestamp `json:"-" sql:"type:DATETIME(6) NOT NULL"`
}

// Scope narrows an assignment; a nil field applies to every domain or tenant.
type Scope struct {
	Domain   *string
	TenantID *string
}

// Matches compares two scopes treating nil as a value equal only to nil.
func (s Scope) Matches(o Scope) bool {
	return sameOptional(s.Domain, o.Domain) && sameOptional(s.TenantID, o.TenantID)
}

func sameOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type Assignment struct {
	UserID types.ID
	RoleID types.ID
	Scope
}

func (a Assignment) Matches(r UserRole) bool {
	return a.UserID == r.UserID && a.RoleID == r.RoleID && a.Scope.Matches(Scope{Domain: r.Domain, TenantID: r.TenantID})
}

func (a Assignment) fields() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   a.UserID,
		"role_id":   a.RoleID,
		"domain":    a.Domain,
		"tenant_id": a.TenantID,
	}
}

func (a Assignment) String() string {
	return "user " + a.UserID.String() + " role " + a.RoleID.String() +
		" domain " + common.StringOrNull(a.Domain) + " tenant " + common.StringOrNull(a.TenantID)
}
