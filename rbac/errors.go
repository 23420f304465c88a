package rbac

import (
	"net/http"
	"tenantry/bizerror"
	"tenantry/common"
)

type ErrAssignmentExisted struct {
	Assignment Assignment
}

func (e *ErrAssignmentExisted) Error() string {
	a := e.Assignment
	return "entry for user " + a.UserID.String() + " role " + a.RoleID.String() +
		" already exists on domain " + common.StringOrNull(a.Domain) + " and tenant " + common.StringOrNull(a.TenantID)
}

func (e *ErrAssignmentExisted) Respond() *bizerror.BizErrorDetail {
	return &bizerror.BizErrorDetail{Status: http.StatusConflict, Code: "rbac.assignment_existed", Message: e.Error(),
		Data: e.Assignment.fields()}
}
