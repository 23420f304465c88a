package sessions

import (
	"context"
	"net/http"
	"tenantry/account"
	"tenantry/authority"
	"tenantry/bizerror"
	"tenantry/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
)

var (
	PathSessions = "/v1/sessions"
	PathSession  = "/v1/session"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password"`
}

type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, username, password string) (*account.User, error)
}

type PermsLoader interface {
	LoadPerms(ctx context.Context, userID types.ID) (authority.Permissions, error)
}

// RegisterSessionsHandler mounts login and logout; loginMiddleWares run before login only.
func RegisterSessionsHandler(r *gin.Engine, store *session.Store, verifier CredentialVerifier, loader PermsLoader,
	loginMiddleWares ...gin.HandlerFunc) {
	h := &sessionsHandler{store: store, verifier: verifier, loader: loader}
	g := r.Group(PathSessions)
	g.POST("", append(loginMiddleWares, h.handleLogin)...)
	g.DELETE("", h.handleLogout)
}

type sessionsHandler struct {
	store    *session.Store
	verifier CredentialVerifier
	loader   PermsLoader
}

func (h *sessionsHandler) handleLogin(c *gin.Context) {
	login := LoginRequest{}
	if err := c.ShouldBindBodyWith(&login, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	ctx := c.Request.Context()
	user, err := h.verifier.VerifyCredentials(ctx, login.Username, login.Password)
	if err != nil {
		panic(err)
	}
	perms, err := h.loader.LoadPerms(ctx, user.ID)
	if err != nil {
		panic(err)
	}

	token := uuid.New().String()
	s := session.Session{Token: token, Identity: session.Identity{ID: user.ID, Name: user.Username},
		Perms: perms, SigningTime: time.Now()}
	h.store.Save(&s)

	c.SetCookie(session.KeySecToken, token, int(h.store.Expiration()/time.Second), "/", "", false, true)
	c.JSON(http.StatusOK, &s)
}

func (h *sessionsHandler) handleLogout(c *gin.Context) {
	if token := session.ExtractToken(c); token != "" {
		h.store.Delete(token)
	}
	c.SetCookie(session.KeySecToken, "", -1, "/", "", false, true)
	c.AbortWithStatus(http.StatusNoContent)
}
