package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/estateshq/estates-backend/estates-notification/api/common"
	"github.com/estateshq/estates-backend/estates-notification/app"
	"github.com/estateshq/estates-backend/estates-notification/util"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

func (a *API) handler(f common.HandlerFuncWithCTX, auth bool) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, a.Config.MaxContentSize*1024*1024)
		beginTime := time.Now()
		hijacker, _ := w.(http.Hijacker)
		ctx := a.App.NewContext().WithRemoteAddress(a.IPAddressForRequest(r))
		ctx = ctx.WithLogger(ctx.Logger.WithField("request_id", base64.RawURLEncoding.EncodeToString(util.NewID())))
		ctx.Vars = mux.Vars(r)

		rec := &common.StatusCodeRecorder{
			ResponseWriter: w,
			Hijacker:       hijacker,
		}
		w = rec

		defer func() {
			statusCode := rec.StatusCode
			if statusCode == 0 {
				statusCode = 200
			}
			duration := time.Since(beginTime)

			logger := ctx.Logger.WithFields(logrus.Fields{
				"duration":    duration,
				"status_code": statusCode,
				"remote":      ctx.RemoteAddress,
			})
			logger.Info(r.Method + " " + r.URL.RequestURI())
		}()

		defer func() {
			if localRecover := recover(); localRecover != nil {
				ctx.Logger.Error(fmt.Errorf("recovered from panic\n %v: %s", localRecover, debug.Stack()))
				json.NewEncoder(w).Encode(util.SetResponse(nil, 0, "server failed to process request"))
			}
		}()

		if auth {
			ownerID, err := a.authenticate(r)
			if err != nil {
				ctx.Logger.WithError(err).Warn("authentication failed")
				uerr := ctx.AuthorizationError(true)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(uerr.StatusCode)
				json.NewEncoder(w).Encode(util.SetResponse(nil, 0, uerr.Message))
				return
			}
			ctx = ctx.WithOwner(ownerID)
		}

		// The websocket handler hijacks the connection and writes no JSON.
		if r.Header.Get("Upgrade") != "websocket" {
			w.Header().Set("Content-Type", "application/json")
		}

		if err := f(ctx, w, r); err != nil {
			a.writeError(ctx, w, err)
		}
	}
}

// internalHandler guards the collaborator ingest route with the shared
// internal key instead of an owner JWT.
func (a *API) internalHandler(f common.HandlerFuncWithCTX) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a.Config.InternalAPIKey == "" || r.Header.Get("X-Internal-Key") != a.Config.InternalAPIKey {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(util.SetResponse(nil, 0, "invalid internal key"))
			return
		}
		a.handler(f, false)(w, r)
	}
}

func (a *API) writeError(ctx *app.Context, w http.ResponseWriter, err error) {
	if verr, ok := err.(*app.ValidationError); ok {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(util.SetResponse(nil, 0, verr.Message))
		return
	}
	if uerr, ok := err.(*app.UserError); ok {
		w.WriteHeader(uerr.StatusCode)
		json.NewEncoder(w).Encode(util.SetResponse(nil, 0, uerr.Message))
		return
	}

	ctx.Logger.Error(err)
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(util.SetResponse(nil, 0, err.Error()))
}

// authenticate resolves the current owner from the auth cookie or the
// Authorization header.
func (a *API) authenticate(r *http.Request) (string, error) {
	token := ""
	if cookie, err := r.Cookie(a.Config.AuthCookieName); err == nil {
		token = cookie.Value
	}
	if token == "" {
		header := r.Header.Get("Authorization")
		token = strings.TrimPrefix(header, "Bearer ")
	}
	if token == "" {
		// Browsers cannot set headers on websocket dials; the token rides a
		// query param there.
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return "", fmt.Errorf("missing auth token")
	}

	claims, err := a.App.JwtService.FetchJWTToken(token)
	if err != nil {
		return "", err
	}
	return claims.OwnerID, nil
}

// IPAddressForRequest resolves the client address behind the configured proxy
// count.
func (a *API) IPAddressForRequest(r *http.Request) string {
	addr := r.RemoteAddr
	if a.Config.ProxyCount > 0 {
		h := r.Header.Get("X-Forwarded-For")
		if h != "" {
			clients := strings.Split(h, ",")
			if a.Config.ProxyCount > len(clients) {
				addr = clients[0]
			} else {
				addr = clients[len(clients)-a.Config.ProxyCount]
			}
		}
	}
	return strings.Split(strings.TrimSpace(addr), ":")[0]
}
