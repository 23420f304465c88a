package bootstrap

import (
	"context"
	"errors"
	"tenantry/account"
	"tenantry/authority"
	"tenantry/persistence"
	"tenantry/rbac"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

const (
	DefaultDomain   = "default"
	RootUsername    = "root"
	DefaultPassword = "admin123"
)

var (
	rootRole          = rbac.Role{ID: 1, Name: authority.RoleRoot, Description: "Full access, including user management"}
	administratorRole = rbac.Role{ID: 2, Name: authority.RoleAdministrator, Description: "Role assignment"}
	defaultDomain     = rbac.Domain{ID: 1, Name: DefaultDomain, Description: "Default domain"}
	rootUserID        = types.ID(1)
	rootAssignment    = rbac.UserRole{ID: 1, UserID: rootUserID, RoleID: rootRole.ID}
)

// MigrateSchema creates or alters the tables of every persisted entity.
func MigrateSchema(ds *persistence.DataSourceManager) error {
	return ds.GormDB(context.Background()).
		AutoMigrate(&account.User{}, &rbac.Role{}, &rbac.Domain{}, &rbac.UserRole{}).Error
}

// DefaultSecurityConfiguration seeds the built-in roles, the default domain and the root user
// holding a global Root assignment. The root password is only set when the user is created.
func DefaultSecurityConfiguration(ds *persistence.DataSourceManager, hasher account.PasswordHasher,
	initialPassword string, log logrus.FieldLogger) error {
	if initialPassword == "" {
		initialPassword = DefaultPassword
	}

	now := types.CurrentTimestamp()
	return ds.GormDB(context.Background()).Transaction(func(tx *gorm.DB) error {
		for _, role := range []rbac.Role{rootRole, administratorRole} {
			role.CreationTime = now
			if err := saveIfAbsent(tx, &rbac.Role{}, role.ID, &role); err != nil {
				return err
			}
		}

		domain := defaultDomain
		domain.CreationTime = now
		if err := saveIfAbsent(tx, &rbac.Domain{}, domain.ID, &domain); err != nil {
			return err
		}

		existing := account.User{}
		err := tx.Where("id = ?", rootUserID).First(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			hashed, err := hasher.Hash(initialPassword)
			if err != nil {
				return err
			}
			root := account.User{ID: rootUserID, Username: RootUsername, Name: "Root", Password: &hashed,
				Enabled: true, Tag: account.UserTag, CreationTime: now}
			if err := tx.Create(&root).Error; err != nil {
				return err
			}
			log.WithField("username", RootUsername).Info("root user created")
		}

		assignment := rootAssignment
		assignment.CreationTime = now
		return saveIfAbsent(tx, &rbac.UserRole{}, assignment.ID, &assignment)
	})
}

func saveIfAbsent(tx *gorm.DB, model interface{}, id types.ID, record interface{}) error {
	var count int
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return tx.Create(record).Error
}
