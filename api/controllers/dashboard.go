package controllers

import (
	"net/http"

	"github.com/pharmalink/pharmacy-pos/api/responses"
	"github.com/pharmalink/pharmacy-pos/internal/dashboard"
	"github.com/pharmalink/pharmacy-pos/pkg/logger"
)

func Dashboard(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "dashboard")
			return
		}
		token, ok := sessionToken(w, r, logg)
		if !ok {
			return
		}

		summary, err := svc.Get(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
