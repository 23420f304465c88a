package testinfra

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"tenantry/authority"
	"tenantry/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// ExecuteRequest serves req with router and returns status, body and the raw response.
func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, *http.Response) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()
	bodyBytes, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		panic(err)
	}
	return resp.StatusCode, string(bodyBytes), resp
}

// BuildSession builds a signed-in session holding the given role names.
func BuildSession(uid types.ID, roles ...string) *session.Session {
	perms := authority.Permissions{}
	perms = append(perms, roles...)
	return &session.Session{
		Context:  context.Background(),
		Token:    "token-" + uid.String(),
		Identity: session.Identity{ID: uid, Name: "user" + uid.String()},
		Perms:    perms,
	}
}

// InjectSession marks every request of router as signed in with s, bypassing the token cache.
func InjectSession(s *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		session.InjectSessionIntoGinContext(c, s)
		c.Next()
	}
}
