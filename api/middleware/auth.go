package middleware

import (
	"context"
	"net/http"

	"github.com/pharmalink/pharmacy-pos/api/responses"
	pkgAuth "github.com/pharmalink/pharmacy-pos/pkg/auth"
	"github.com/pharmalink/pharmacy-pos/pkg/auth/session"
	pkgerrors "github.com/pharmalink/pharmacy-pos/pkg/errors"
	"github.com/pharmalink/pharmacy-pos/pkg/logger"
)

type sessionIdentity struct {
	userID     string
	pharmacyID string
	role       string
}

// RequireSession rejects requests while nobody is signed in and seeds the
// request context with the session token and identity.
func RequireSession(sessions session.Reader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sessions == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session store unavailable"))
				return
			}
			sess, ok := sessions.Current()
			if !ok || sess.Token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required"))
				return
			}

			id := identityOf(sess)
			ctx := context.WithValue(r.Context(), ctxToken, sess.Token)
			ctx = context.WithValue(ctx, ctxUserID, id.userID)
			ctx = context.WithValue(ctx, ctxPharmacyID, id.pharmacyID)
			ctx = context.WithValue(ctx, ctxRole, id.role)

			if logg != nil {
				if id.userID != "" {
					ctx = logg.WithUserID(ctx, id.userID)
				}
				if id.pharmacyID != "" {
					ctx = logg.WithPharmacyID(ctx, id.pharmacyID)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// identityOf prefers the cached user profile and falls back to the token
// claims, which is all a restored session has.
func identityOf(sess session.Session) sessionIdentity {
	var id sessionIdentity
	if sess.User != nil {
		id.userID = sess.User.ID.String()
		id.role = sess.User.Role
		if sess.User.Pharmacy != nil {
			id.pharmacyID = sess.User.Pharmacy.ID.String()
		}
	}
	if id.userID != "" && id.pharmacyID != "" {
		return id
	}
	claims, err := pkgAuth.ParseUnverified(sess.Token)
	if err != nil {
		return id
	}
	if id.userID == "" {
		id.userID = claims.Subject
	}
	if id.pharmacyID == "" {
		id.pharmacyID = claims.PharmacyID.String()
	}
	if id.role == "" {
		id.role = claims.Role
	}
	return id
}
