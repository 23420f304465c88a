package account

import (
	"context"
	"errors"
	"tenantry/bizerror"
	"tenantry/common"
	"tenantry/persistence"
	"tenantry/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

type UserManagerTraits interface {
	QueryUsers(sec *session.Session) ([]User, error)
	DetailUser(id types.ID, sec *session.Session) (*User, error)
	CreateUser(c *UserPayload, sec *session.Session) (*User, error)
	UpdateUser(id types.ID, c *UserPayload, sec *session.Session) (*User, error)
	DeleteUser(id types.ID, sec *session.Session) error

	VerifyCredentials(ctx context.Context, username, password string) (*User, error)
}

// DeletionHook removes data owned by a user inside the deleting transaction.
type DeletionHook func(tx *gorm.DB, userID types.ID) error

type UserManager struct {
	dataSource    *persistence.DataSourceManager
	hasher        PasswordHasher
	sessions      *session.Store
	deletionHooks []DeletionHook
	idWorker      *sonyflake.Sonyflake
	log           logrus.FieldLogger
}

func NewUserManager(ds *persistence.DataSourceManager, hasher PasswordHasher, sessions *session.Store,
	log logrus.FieldLogger) *UserManager {
	return &UserManager{
		dataSource: ds,
		hasher:     hasher,
		sessions:   sessions,
		idWorker:   sonyflake.NewSonyflake(sonyflake.Settings{}),
		log:        log,
	}
}

// OnDelete registers hooks run by DeleteUser before the user row is removed.
func (m *UserManager) OnDelete(hooks ...DeletionHook) {
	m.deletionHooks = append(m.deletionHooks, hooks...)
}

func (m *UserManager) QueryUsers(sec *session.Session) ([]User, error) {
	users := []User{}
	if err := m.dataSource.GormDB(sec.Ctx()).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Password = nil
	}
	return users, nil
}

func (m *UserManager) DetailUser(id types.ID, sec *session.Session) (*User, error) {
	user, err := findUser(m.dataSource.GormDB(sec.Ctx()), id)
	if err != nil {
		return nil, err
	}
	user.Password = nil
	return user, nil
}

func (m *UserManager) CreateUser(c *UserPayload, sec *session.Session) (*User, error) {
	if c.Username == nil || *c.Username == "" {
		return nil, &bizerror.ErrBadParam{Cause: errors.New("username is required")}
	}

	user := User{ID: common.NextId(m.idWorker), Enabled: true, CreationTime: types.CurrentTimestamp()}
	c.applyTo(&user)
	user.Tag = UserTag

	var omits []string
	if c.Password != nil {
		hashed, err := m.hasher.Hash(*c.Password)
		if err != nil {
			return nil, err
		}
		user.Password = &hashed
	} else {
		omits = append(omits, "password")
	}

	err := m.dataSource.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		if err := checkUsernameAvailable(tx, user.Username, 0); err != nil {
			return err
		}
		return tx.Omit(omits...).Create(&user).Error
	})
	if err != nil {
		return nil, err
	}

	m.log.WithFields(logrus.Fields{"userId": user.ID, "username": user.Username, "operator": sec.Identity.ID}).Info("user created")
	user.Password = nil
	return &user, nil
}

func (m *UserManager) UpdateUser(id types.ID, c *UserPayload, sec *session.Session) (*User, error) {
	changes := c.changes()
	changes["tag"] = UserTag
	if c.Password != nil {
		hashed, err := m.hasher.Hash(*c.Password)
		if err != nil {
			return nil, err
		}
		changes["password"] = hashed
	}

	var user *User
	err := m.dataSource.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		if _, err := findUser(tx, id); err != nil {
			return err
		}
		if c.Username != nil {
			if err := checkUsernameAvailable(tx, *c.Username, id); err != nil {
				return err
			}
		}
		if err := tx.Model(&User{}).Where("id = ?", id).Updates(changes).Error; err != nil {
			return err
		}
		updated, err := findUser(tx, id)
		if err != nil {
			return err
		}
		user = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.log.WithFields(logrus.Fields{"userId": id, "operator": sec.Identity.ID}).Info("user updated")
	user.Password = nil
	return user, nil
}

// DeleteUser removes the user and everything registered with OnDelete in one transaction,
// then signs the user out everywhere.
func (m *UserManager) DeleteUser(id types.ID, sec *session.Session) error {
	err := m.dataSource.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		if _, err := findUser(tx, id); err != nil {
			return err
		}
		for _, hook := range m.deletionHooks {
			if err := hook(tx, id); err != nil {
				return err
			}
		}
		db := tx.Delete(User{}, "id = ?", id)
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected == 0 {
			return bizerror.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	evicted := m.sessions.EvictUser(id)
	m.log.WithFields(logrus.Fields{"userId": id, "operator": sec.Identity.ID, "evicted": evicted}).Info("user deleted")
	return nil
}

// VerifyCredentials returns the enabled user identified by username and password.
func (m *UserManager) VerifyCredentials(ctx context.Context, username, password string) (*User, error) {
	user := User{}
	if err := m.dataSource.GormDB(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrInvalidPassword
		}
		return nil, err
	}
	if user.Password == nil || !user.Enabled {
		return nil, bizerror.ErrInvalidPassword
	}
	ok, err := m.hasher.Verify(*user.Password, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, bizerror.ErrInvalidPassword
	}
	user.Password = nil
	return &user, nil
}

func findUser(db *gorm.DB, id types.ID) (*User, error) {
	user := User{}
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// checkUsernameAvailable fails when username is held by a user other than self.
func checkUsernameAvailable(db *gorm.DB, username string, self types.ID) error {
	var count int
	q := db.Model(&User{}).Where("username = ?", username)
	if self != 0 {
		q = q.Where("id <> ?", self)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return bizerror.ErrUsernameExisted
	}
	return nil
}
