package rbac

import (
	"errors"
	"net/http"
	"tenantry/bizerror"
	"tenantry/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

var (
	PathDomains  = "/v1/rbac/domains"
	PathUserRole = "/v1/rbac/user"
)

// AssignmentPaths are the route templates accepted by assign and remove.
var AssignmentPaths = []string{
	PathUserRole + "/:id/:role",
	PathUserRole + "/:id/:role/:domain",
	PathUserRole + "/:id/:role/:domain/:tenant_id",
}

func RegisterAssignmentsHandler(r *gin.Engine, m AssignmentManagerTraits, middleWares ...gin.HandlerFunc) {
	h := &assignmentsHandler{manager: m}

	r.Group(PathDomains, middleWares...).GET("", h.handleListDomains)

	g := r.Group("", middleWares...)
	g.GET(PathUserRole+"/:id", h.handleQueryUserRoles)
	for _, path := range AssignmentPaths {
		g.POST(path, h.handleAssignRole)
		g.DELETE(path, h.handleRemoveRole)
	}
}

type assignmentsHandler struct {
	manager AssignmentManagerTraits
}

func (h *assignmentsHandler) handleListDomains(c *gin.Context) {
	var term *string
	if v, found := c.GetQuery("term"); found {
		term = &v
	}
	domains, err := h.manager.ListDomains(term, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, domains)
}

func (h *assignmentsHandler) handleQueryUserRoles(c *gin.Context) {
	userID := parseID(c, "id")
	records, err := h.manager.QueryUserRoles(userID, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func (h *assignmentsHandler) handleAssignRole(c *gin.Context) {
	a := bindAssignment(c)
	record, err := h.manager.AssignRole(a, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func (h *assignmentsHandler) handleRemoveRole(c *gin.Context) {
	a := bindAssignment(c)
	if err := h.manager.RemoveRole(a, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

// scopeParams bounds the scope path segments to the widths of their columns.
type scopeParams struct {
	Domain   *string `uri:"domain" binding:"omitempty,max=255"`
	TenantID *string `uri:"tenant_id" binding:"omitempty,max=64"`
}

func bindAssignment(c *gin.Context) *Assignment {
	a := &Assignment{UserID: parseID(c, "id"), RoleID: parseID(c, "role")}
	params := scopeParams{}
	if err := c.ShouldBindUri(&params); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	a.Domain = params.Domain
	a.TenantID = params.TenantID
	return a
}

func parseID(c *gin.Context, param string) types.ID {
	id, err := types.ParseID(c.Param(param))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid " + param + " '" + c.Param(param) + "'")})
	}
	return id
}
