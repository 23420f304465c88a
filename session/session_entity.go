package session

import (
	"context"
	"tenantry/authority"
	"time"

	"github.com/fundwit/go-commons/types"
)

type Session struct {
	Context context.Context `json:"-"`

	Token    string                `json:"token"`
	Identity Identity              `json:"identity"`
	Perms    authority.Permissions `json:"perms"`

	SigningTime time.Time `json:"-"`
}

type Identity struct {
	ID   types.ID `json:"id"`
	Name string   `json:"name"`
}

func (s Session) Clone() Session {
	c := s
	if s.Perms != nil {
		c.Perms = append(authority.Permissions{}, s.Perms...)
	}
	return c
}

// Ctx never returns nil.
func (s *Session) Ctx() context.Context {
	if s == nil || s.Context == nil {
		return context.Background()
	}
	return s.Context
}
