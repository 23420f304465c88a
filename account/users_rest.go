package account

import (
	"errors"
	"net/http"
	"tenantry/bizerror"
	"tenantry/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathUsers = "/v1/users"
	PathUser  = "/v1/user"
)

func RegisterUsersHandler(r *gin.Engine, m UserManagerTraits, middleWares ...gin.HandlerFunc) {
	h := &usersHandler{manager: m}

	r.Group(PathUsers, middleWares...).GET("", h.handleQueryUsers)

	g := r.Group(PathUser, middleWares...)
	g.POST("", h.handleCreateUser)
	g.GET(":id", h.handleDetailUser)
	g.PUT(":id", h.handleUpdateUser)
	g.PATCH(":id", h.handleUpdateUser)
	g.DELETE(":id", h.handleDeleteUser)
}

type usersHandler struct {
	manager UserManagerTraits
}

func (h *usersHandler) handleQueryUsers(c *gin.Context) {
	users, err := h.manager.QueryUsers(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, users)
}

func (h *usersHandler) handleDetailUser(c *gin.Context) {
	id := parseUserID(c)
	user, err := h.manager.DetailUser(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, user)
}

func (h *usersHandler) handleCreateUser(c *gin.Context) {
	payload := UserPayload{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	user, err := h.manager.CreateUser(&payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, user)
}

func (h *usersHandler) handleUpdateUser(c *gin.Context) {
	id := parseUserID(c)
	payload := UserPayload{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	user, err := h.manager.UpdateUser(id, &payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, user)
}

func (h *usersHandler) handleDeleteUser(c *gin.Context) {
	id := parseUserID(c)
	if err := h.manager.DeleteUser(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func parseUserID(c *gin.Context) types.ID {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return id
}
