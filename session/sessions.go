package session

import (
	"context"
	"tenantry/bizerror"

	"github.com/gin-gonic/gin"
)

const KeySecCtx = "SecCtx"
const KeySecToken = "sec_token"
const HeaderAuthToken = "X-Auth-Token"

func ExtractSessionFromGinContext(ctx *gin.Context) *Session {
	value, found := ctx.Get(KeySecCtx)
	if !found {
		return &Session{Context: requestContext(ctx)}
	}
	s0, ok := value.(*Session)
	if !ok || s0.Token == "" {
		return &Session{Context: requestContext(ctx)}
	}
	s := s0.Clone()
	s.Context = requestContext(ctx) // trace context
	return &s
}

func requestContext(ctx *gin.Context) context.Context {
	if ctx.Request == nil {
		return context.Background()
	}
	return ctx.Request.Context()
}

func InjectSessionIntoGinContext(ctx *gin.Context, s *Session) {
	if s != nil && s.Token != "" {
		ctx.Set(KeySecCtx, s)
	}
}

func ExtractToken(ctx *gin.Context) string {
	if token, err := ctx.Cookie(KeySecToken); err == nil && token != "" {
		return token
	}
	return ctx.GetHeader(HeaderAuthToken)
}

func SimpleAuthFilter(store *Store) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := ExtractToken(ctx)
		if token == "" {
			panic(bizerror.ErrUnauthenticated)
		}
		s, found := store.Get(token)
		if !found {
			panic(bizerror.ErrUnauthenticated)
		}
		InjectSessionIntoGinContext(ctx, s)
		ctx.Next()
	}
}
