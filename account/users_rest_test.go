package account_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"tenantry/account"
	"tenantry/bizerror"
	"tenantry/session"
	"tenantry/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

type userManagerMock struct {
	QueryUsersFunc        func(sec *session.Session) ([]account.User, error)
	DetailUserFunc        func(id types.ID, sec *session.Session) (*account.User, error)
	CreateUserFunc        func(c *account.UserPayload, sec *session.Session) (*account.User, error)
	UpdateUserFunc        func(id types.ID, c *account.UserPayload, sec *session.Session) (*account.User, error)
	DeleteUserFunc        func(id types.ID, sec *session.Session) error
	VerifyCredentialsFunc func(ctx context.Context, username, password string) (*account.User, error)
}

func (m *userManagerMock) QueryUsers(sec *session.Session) ([]account.User, error) {
	return m.QueryUsersFunc(sec)
}
func (m *userManagerMock) DetailUser(id types.ID, sec *session.Session) (*account.User, error) {
	return m.DetailUserFunc(id, sec)
}
func (m *userManagerMock) CreateUser(c *account.UserPayload, sec *session.Session) (*account.User, error) {
	return m.CreateUserFunc(c, sec)
}
func (m *userManagerMock) UpdateUser(id types.ID, c *account.UserPayload, sec *session.Session) (*account.User, error) {
	return m.UpdateUserFunc(id, c, sec)
}
func (m *userManagerMock) DeleteUser(id types.ID, sec *session.Session) error {
	return m.DeleteUserFunc(id, sec)
}
func (m *userManagerMock) VerifyCredentials(ctx context.Context, username, password string) (*account.User, error) {
	return m.VerifyCredentialsFunc(ctx, username, password)
}

func strPtr(s string) *string {
	return &s
}

var _ = Describe("UsersRestAPI", func() {
	var (
		router  *gin.Engine
		manager *userManagerMock
		hashed  = "$2a$10$notarealhashnotarealhashnotarealhashnotarealhash00"
	)

	BeforeEach(func() {
		router = gin.Default()
		router.Use(bizerror.ErrorHandling())
		manager = &userManagerMock{}
		account.RegisterUsersHandler(router, manager, testinfra.InjectSession(testinfra.BuildSession(1, "Root")))
	})

	Describe("handleQueryUsers", func() {
		It("should return users without password", func() {
			manager.QueryUsersFunc = func(sec *session.Session) ([]account.User, error) {
				Expect(sec.Identity.ID).To(Equal(types.ID(1)))
				return []account.User{{ID: 123, Username: "a", Password: &hashed, Tag: account.UserTag, Enabled: true}}, nil
			}

			req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).ToNot(ContainSubstring("password"))
			var users []map[string]interface{}
			Expect(json.Unmarshal([]byte(body), &users)).To(Succeed())
			Expect(users).To(HaveLen(1))
			Expect(users[0]).ToNot(HaveKey("password"))
			Expect(users[0]).To(HaveKeyWithValue("id", "123"))
			Expect(users[0]).To(HaveKeyWithValue("username", "a"))
			Expect(users[0]).To(HaveKeyWithValue("tag", "tachyonic"))
			Expect(users[0]).To(HaveKeyWithValue("enabled", true))
			Expect(users[0]).To(HaveKeyWithValue("domain", BeNil()))
			Expect(users[0]).To(HaveKey("creation_time"))
		})

		It("should be able to handle error when query users", func() {
			manager.QueryUsersFunc = func(sec *session.Session) ([]account.User, error) {
				return nil, errors.New("a mocked error")
			}
			req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusInternalServerError))
			Expect(body).To(MatchJSON(`{"code":"common.internal_server_error","message":"a mocked error","data":null}`))
		})
	})

	Describe("handleDetailUser", func() {
		It("should return the user identified by path", func() {
			var pathId types.ID
			manager.DetailUserFunc = func(id types.ID, sec *session.Session) (*account.User, error) {
				pathId = id
				return &account.User{ID: id, Username: "a", Password: &hashed, Tag: account.UserTag}, nil
			}
			req := httptest.NewRequest(http.MethodGet, "/v1/user/123", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))
			Expect(pathId).To(Equal(types.ID(123)))
			Expect(body).ToNot(ContainSubstring("password"))
			Expect(body).To(ContainSubstring(`"username":"a"`))
		})

		It("should return 400 when id is invalid", func() {
			req := httptest.NewRequest(http.MethodGet, "/v1/user/abc", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(MatchJSON(`{"code":"common.bad_param","message":"invalid id 'abc'","data":null}`))
		})

		It("should return 404 when user is not exist", func() {
			manager.DetailUserFunc = func(id types.ID, sec *session.Session) (*account.User, error) {
				return nil, bizerror.ErrNotFound
			}
			req := httptest.NewRequest(http.MethodGet, "/v1/user/2", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusNotFound))
			Expect(body).To(MatchJSON(`{"code":"common.record_not_found","message":"record not found","data":null}`))
		})
	})

	Describe("handleCreateUser", func() {
		It("should pass payload to manager and render created user", func() {
			var payload *account.UserPayload
			manager.CreateUserFunc = func(c *account.UserPayload, sec *session.Session) (*account.User, error) {
				payload = c
				return &account.User{ID: 123, Username: *c.Username, Password: &hashed, Tag: account.UserTag}, nil
			}

			req := httptest.NewRequest(http.MethodPost, "/v1/user", bytes.NewReader([]byte(`{"username":"a","password":"p1"}`)))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusCreated))
			Expect(body).ToNot(ContainSubstring("password"))
			Expect(body).To(ContainSubstring(`"tag":"tachyonic"`))
			Expect(*payload).To(Equal(account.UserPayload{Username: strPtr("a"), Password: strPtr("p1")}))
		})

		It("should treat null password as absent", func() {
			var payload *account.UserPayload
			manager.CreateUserFunc = func(c *account.UserPayload, sec *session.Session) (*account.User, error) {
				payload = c
				return &account.User{ID: 123, Username: *c.Username, Tag: account.UserTag}, nil
			}

			req := httptest.NewRequest(http.MethodPost, "/v1/user", bytes.NewReader([]byte(`{"username":"a","password":null}`)))
			status, _, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusCreated))
			Expect(payload.Password).To(BeNil())
		})

		It("should pass empty and long passwords through to the manager", func() {
			var passwords []string
			manager.CreateUserFunc = func(c *account.UserPayload, sec *session.Session) (*account.User, error) {
				passwords = append(passwords, *c.Password)
				return &account.User{ID: 123, Username: *c.Username, Tag: account.UserTag}, nil
			}

			long := strings.Repeat("密", 30)
			for _, password := range []string{"", long} {
				raw, _ := json.Marshal(map[string]string{"username": "a", "password": password})
				req := httptest.NewRequest(http.MethodPost, "/v1/user", bytes.NewReader(raw))
				status, _, _ := testinfra.ExecuteRequest(req, router)
				Expect(status).To(Equal(http.StatusCreated))
			}
			Expect(passwords).To(Equal([]string{"", long}))
		})

		It("should return 400 when validation failed", func() {
			manager.CreateUserFunc = func(c *account.UserPayload, sec *session.Session) (*account.User, error) {
				Fail("manager should not be invoked")
				return nil, nil
			}

			req := httptest.NewRequest(http.MethodPost, "/v1/user", bytes.NewReader([]byte(`{"username":"a","email":"not-an-email"}`)))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(MatchJSON(`{"code":"common.bad_param",
				"message":"Key: 'UserPayload.Email' Error:Field validation for 'Email' failed on the 'email' tag","data":null}`))
		})

		It("should return 409 when username existed", func() {
			manager.CreateUserFunc = func(c *account.UserPayload, sec *session.Session) (*account.User, error) {
				return nil, bizerror.ErrUsernameExisted
			}
			req := httptest.NewRequest(http.MethodPost, "/v1/user", bytes.NewReader([]byte(`{"username":"a"}`)))
			status, _, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusConflict))
		})
	})

	Describe("handleUpdateUser", func() {
		It("should accept both PUT and PATCH", func() {
			var calls []types.ID
			manager.UpdateUserFunc = func(id types.ID, c *account.UserPayload, sec *session.Session) (*account.User, error) {
				calls = append(calls, id)
				Expect(*c).To(Equal(account.UserPayload{Name: strPtr("Ann")}))
				return &account.User{ID: id, Username: "a", Name: "Ann", Tag: account.UserTag}, nil
			}

			for _, method := range []string{http.MethodPut, http.MethodPatch} {
				req := httptest.NewRequest(method, "/v1/user/123", bytes.NewReader([]byte(`{"name":"Ann"}`)))
				status, body, _ := testinfra.ExecuteRequest(req, router)
				Expect(status).To(Equal(http.StatusOK))
				Expect(body).To(ContainSubstring(`"name":"Ann"`))
			}
			Expect(calls).To(Equal([]types.ID{123, 123}))
		})

		It("should return 404 when user is not exist", func() {
			manager.UpdateUserFunc = func(id types.ID, c *account.UserPayload, sec *session.Session) (*account.User, error) {
				return nil, bizerror.ErrNotFound
			}
			req := httptest.NewRequest(http.MethodPatch, "/v1/user/404", bytes.NewReader([]byte(`{"name":"Ann"}`)))
			status, _, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusNotFound))
		})
	})

	Describe("handleDeleteUser", func() {
		It("should return 204 when user deleted", func() {
			var pathId types.ID
			manager.DeleteUserFunc = func(id types.ID, sec *session.Session) error {
				pathId = id
				return nil
			}
			req := httptest.NewRequest(http.MethodDelete, "/v1/user/123", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusNoContent))
			Expect(body).To(BeZero())
			Expect(pathId).To(Equal(types.ID(123)))
		})

		It("should return 404 when user is not exist", func() {
			manager.DeleteUserFunc = func(id types.ID, sec *session.Session) error {
				return bizerror.ErrNotFound
			}
			req := httptest.NewRequest(http.MethodDelete, "/v1/user/404", nil)
			status, _, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusNotFound))
		})
	})
})
