package rbac

import (
	"context"
	"tenantry/authority"
	"tenantry/common"
	"tenantry/persistence"
	"tenantry/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

type AssignmentManagerTraits interface {
	ListDomains(term *string, sec *session.Session) ([]string, error)
	QueryUserRoles(userID types.ID, sec *session.Session) ([]UserRole, error)
	AssignRole(a *Assignment, sec *session.Session) (*UserRole, error)
	RemoveRole(a *Assignment, sec *session.Session) error

	LoadPerms(ctx context.Context, userID types.ID) (authority.Permissions, error)
}

type invalidator interface {
	Invalidate(userID types.ID)
}

type AssignmentManager struct {
	dataSource *persistence.DataSourceManager
	resolver   DomainResolver
	sessions   *session.Store
	idWorker   *sonyflake.Sonyflake
	log        logrus.FieldLogger
}

// NewAssignmentManager builds a manager that pushes every assignment change into the
// live sessions of the affected user.
func NewAssignmentManager(ds *persistence.DataSourceManager, resolver DomainResolver, sessions *session.Store,
	log logrus.FieldLogger) *AssignmentManager {
	return &AssignmentManager{
		dataSource: ds,
		resolver:   resolver,
		sessions:   sessions,
		idWorker:   sonyflake.NewSonyflake(sonyflake.Settings{}),
		log:        log,
	}
}

func (m *AssignmentManager) ListDomains(term *string, sec *session.Session) ([]string, error) {
	domains, err := m.resolver.UserDomains(sec.Ctx(), sec.Identity.ID)
	if err != nil {
		return nil, err
	}
	return FilterDomains(domains, term), nil
}

func (m *AssignmentManager) QueryUserRoles(userID types.ID, sec *session.Session) ([]UserRole, error) {
	records := []UserRole{}
	if err := m.dataSource.GormDB(sec.Ctx()).Where("user_id = ?", userID).Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// AssignRole persists a, failing with *ErrAssignmentExisted when the exact tuple is already assigned.
// Check and insert share a transaction but take no lock.
func (m *AssignmentManager) AssignRole(a *Assignment, sec *session.Session) (*UserRole, error) {
	record := UserRole{
		ID:           common.NextId(m.idWorker),
		UserID:       a.UserID,
		RoleID:       a.RoleID,
		Domain:       a.Domain,
		TenantID:     a.TenantID,
		CreationTime: types.CurrentTimestamp(),
	}

	err := m.dataSource.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		var candidates []UserRole
		if err := tx.Where("user_id = ? AND role_id = ?", a.UserID, a.RoleID).Find(&candidates).Error; err != nil {
			return err
		}
		for _, c := range candidates {
			if a.Matches(c) {
				return &ErrAssignmentExisted{Assignment: *a}
			}
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}

	m.refreshUser(sec.Ctx(), a.UserID)
	m.log.WithFields(logrus.Fields{"assignment": a.String(), "operator": sec.Identity.ID}).Info("role assigned")
	return &record, nil
}

// RemoveRole deletes the exact tuple; removing an absent assignment is not an error.
// Scope values are compared byte for byte, so 'a' never removes 'a '.
func (m *AssignmentManager) RemoveRole(a *Assignment, sec *session.Session) error {
	var removed []types.ID
	err := m.dataSource.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		var candidates []UserRole
		if err := tx.Where("user_id = ? AND role_id = ?", a.UserID, a.RoleID).Find(&candidates).Error; err != nil {
			return err
		}
		for _, c := range candidates {
			if a.Matches(c) {
				removed = append(removed, c.ID)
			}
		}
		if len(removed) == 0 {
			return nil
		}
		return tx.Where("id IN (?)", removed).Delete(UserRole{}).Error
	})
	if err != nil {
		return err
	}

	m.refreshUser(sec.Ctx(), a.UserID)
	m.log.WithFields(logrus.Fields{"assignment": a.String(), "operator": sec.Identity.ID, "removed": len(removed)}).
		Info("role removed")
	return nil
}

// PurgeUser deletes every assignment of the user inside tx. It runs as part of user deletion.
func (m *AssignmentManager) PurgeUser(tx *gorm.DB, userID types.ID) error {
	if err := tx.Where("user_id = ?", userID).Delete(UserRole{}).Error; err != nil {
		return err
	}
	m.invalidate(userID)
	return nil
}

// LoadPerms returns the names of every role assigned to the user, whatever the scope.
func (m *AssignmentManager) LoadPerms(ctx context.Context, userID types.ID) (authority.Permissions, error) {
	var names []string
	err := m.dataSource.GormDB(ctx).Table("user_roles").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ?", userID).Order("roles.name ASC").
		Pluck("DISTINCT roles.name", &names).Error
	if err != nil {
		return nil, err
	}
	return authority.Permissions(names), nil
}

func (m *AssignmentManager) invalidate(userID types.ID) {
	if c, ok := m.resolver.(invalidator); ok {
		c.Invalidate(userID)
	}
}

// refreshUser drops cached domains of the user and reloads the permissions of its live
// sessions. When the reload fails the sessions are evicted instead.
func (m *AssignmentManager) refreshUser(ctx context.Context, userID types.ID) {
	m.invalidate(userID)

	perms, err := m.LoadPerms(ctx, userID)
	if err != nil {
		evicted := m.sessions.EvictUser(userID)
		m.log.WithError(err).WithFields(logrus.Fields{"userId": userID, "evicted": evicted}).
			Warn("reload permissions failed, sessions evicted")
		return
	}
	m.sessions.ReplacePerms(userID, perms)
}
