package app

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// Context per request state
type Context struct {
	Logger        logrus.FieldLogger
	RemoteAddress string
	OwnerID       string
	Vars          map[string]string
}

// WithLogger sets logger for context
func (ctx *Context) WithLogger(logger logrus.FieldLogger) *Context {
	ret := *ctx
	ret.Logger = logger
	return &ret
}

// WithRemoteAddress sets remote address for context
func (ctx *Context) WithRemoteAddress(address string) *Context {
	ret := *ctx
	ret.RemoteAddress = address
	return &ret
}

// WithOwner sets the authenticated owner for context
func (ctx *Context) WithOwner(ownerID string) *Context {
	ret := *ctx
	ret.OwnerID = ownerID
	return &ret
}

// AuthorizationError helper for when user is not authorized
func (ctx *Context) AuthorizationError(isInvalidToken bool) *UserError {
	if isInvalidToken {
		return &UserError{Message: "Token has expired", StatusCode: http.StatusUnauthorized}
	}
	return &UserError{Message: "Invalid Credentials", StatusCode: http.StatusForbidden}
}
