package controllers

import (
	"net/http"

	"github.com/pharmalink/pharmacy-pos/api/middleware"
	"github.com/pharmalink/pharmacy-pos/api/responses"
	pkgerrors "github.com/pharmalink/pharmacy-pos/pkg/errors"
	"github.com/pharmalink/pharmacy-pos/pkg/logger"
)

// sessionToken returns the backend token seeded by RequireSession and writes
// UNAUTHORIZED when it is missing.
func sessionToken(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (string, bool) {
	token := middleware.TokenFromContext(r.Context())
	if token == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required"))
		return "", false
	}
	return token, true
}

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable"))
}
