package account

import (
	"github.com/fundwit/go-commons/types"
)

// UserTag classifies every user record written by the directory.
const UserTag = "tachyonic"

type User struct {
	ID       types.ID `json:"id" gorm:"primary_key"`
	Username string   `json:"username" gorm:"unique_index:uni_username;size:255;not null"`
	// Password holds the bcrypt hash and is never rendered.
	Password *string `json:"-" gorm:"size:255"`

	Email       string  `json:"email" gorm:"size:255"`
	Name        string  `json:"name" gorm:"size:255"`
	PhoneMobile string  `json:"phone_mobile" gorm:"size:32"`
	PhoneOffice string  `json:"phone_office" gorm:"size:32"`
	Designation string  `json:"designation" gorm:"size:64"`
	Domain      *string `json:"domain" gorm:"size:255"`
	TenantID    *string `json:"tenant_id" gorm:"size:64"`
	Enabled     bool    `json:"enabled"`
	Tag         string  `json:"tag" gorm:"size:32"`

	CreationTime types.Timestamp `json:"creation_time" sql:"type:DATETIME(6) NOT NULL"`
}

// UserPayload is the body of create and update requests. Nil fields are left untouched;
// a nil or null password is never written.
type UserPayload struct {
	Username *string `json:"username" binding:"omitempty,gte=1,lte=255"`
	Password *string `json:"password"`

	Email       *string `json:"email" binding:"omitempty,email,lte=255"`
	Name        *string `json:"name" binding:"omitempty,lte=255"`
	PhoneMobile *string `json:"phone_mobile" binding:"omitempty,lte=32"`
	PhoneOffice *string `json:"phone_office" binding:"omitempty,lte=32"`
	Designation *string `json:"designation" binding:"omitempty,lte=64"`
	Domain      *string `json:"domain" binding:"omitempty,lte=255"`
	TenantID    *string `json:"tenant_id" binding:"omitempty,lte=64"`
	Enabled     *bool   `json:"enabled"`
}

// changes lists the directory columns carried by p, excluding password and tag.
func (p *UserPayload) changes() map[string]interface{} {
	m := map[string]interface{}{}
	if p.Username != nil {
		m["username"] = *p.Username
	}
	if p.Email != nil {
		m["email"] = *p.Email
	}
	if p.Name != nil {
		m["name"] = *p.Name
	}
	if p.PhoneMobile != nil {
		m["phone_mobile"] = *p.PhoneMobile
	}
	if p.PhoneOffice != nil {
		m["phone_office"] = *p.PhoneOffice
	}
	if p.Designation != nil {
		m["designation"] = *p.Designation
	}
	if p.Domain != nil {
		m["domain"] = *p.Domain
	}
	if p.TenantID != nil {
		m["tenant_id"] = *p.TenantID
	}
	if p.Enabled != nil {
		m["enabled"] = *p.Enabled
	}
	return m
}

func (p *UserPayload) applyTo(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.PhoneMobile != nil {
		u.PhoneMobile = *p.PhoneMobile
	}
	if p.PhoneOffice != nil {
		u.PhoneOffice = *p.PhoneOffice
	}
	if p.Designation != nil {
		u.Designation = *p.Designation
	}
	if p.Domain != nil {
		d := *p.Domain
		u.Domain = &d
	}
	if p.TenantID != nil {
		t := *p.TenantID
		u.TenantID = &t
	}
	if p.Enabled != nil {
		u.Enabled = *p.Enabled
	}
}
