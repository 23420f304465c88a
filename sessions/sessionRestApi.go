package sessions

import (
	"net/http"
	"tenantry/bizerror"
	"tenantry/session"
	"time"

	"github.com/gin-gonic/gin"
)

func RegisterSessionHandler(r *gin.Engine, store *session.Store, loader PermsLoader, middleWares ...gin.HandlerFunc) {
	h := &sessionHandler{store: store, loader: loader}
	r.Group(PathSession, middleWares...).GET("", h.handleDetailSession)
}

type sessionHandler struct {
	store  *session.Store
	loader PermsLoader
}

// handleDetailSession reloads the caller's permissions into the cached session,
// keeping the expiry set at login.
func (h *sessionHandler) handleDetailSession(c *gin.Context) {
	sec := session.ExtractSessionFromGinContext(c)

	now := time.Now()
	ttl := h.store.Expiration() - now.Sub(sec.SigningTime)
	if sec.Token == "" || ttl <= 0 {
		panic(bizerror.ErrUnauthenticated)
	}

	perms, err := h.loader.LoadPerms(sec.Ctx(), sec.Identity.ID)
	if err != nil {
		panic(err)
	}
	refreshed := session.Session{Token: sec.Token, Identity: sec.Identity, Perms: perms, SigningTime: sec.SigningTime}
	h.store.SaveWithTTL(&refreshed, ttl)
	c.JSON(http.StatusOK, &refreshed)
}
