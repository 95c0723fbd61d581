package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pharmalink/pharmacy-pos/api/responses"
	"github.com/pharmalink/pharmacy-pos/api/validators"
	"github.com/pharmalink/pharmacy-pos/internal/pos"
	"github.com/pharmalink/pharmacy-pos/pkg/logger"
)

func PosCart(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "pos")
			return
		}
		responses.WriteSuccess(w, svc.Cart())
	}
}

func PosClearCart(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "pos")
			return
		}
		responses.WriteSuccess(w, svc.Clear())
	}
}

// PosAddItem adds one unit of a medication from the loaded inventory.
func PosAddItem(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "pos")
			return
		}

		var body pos.AddToCartRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.AddToCart(body.MedicationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func PosIncreaseItem(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "pos")
			return
		}
		view, err := svc.Increase(chi.URLParam(r, "medicationID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func PosDecreaseItem(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "pos")
			return
		}
		responses.WriteSuccess(w, svc.Decrease(chi.URLParam(r, "medicationID")))
	}
}

func PosRemoveItem(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "pos")
			return
		}
		responses.WriteSuccess(w, svc.Remove(chi.URLParam(r, "medicationID")))
	}
}

// PosInventory searches the inventory snapshot loaded for the till.
func PosInventory(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "pos")
			return
		}
		responses.WriteSuccess(w, svc.Medications(validators.QueryString(r, "search", maxSearchLength)))
	}
}

func PosRefreshInventory(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "pos")
			return
		}
		token, ok := sessionToken(w, r, logg)
		if !ok {
			return
		}

		meds, err := svc.RefreshInventory(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, meds)
	}
}

func PosCheckout(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "pos")
			return
		}
		token, ok := sessionToken(w, r, logg)
		if !ok {
			return
		}

		var body pos.CheckoutRequest
		if err := validators.DecodeOptionalJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Checkout(r.Context(), token, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func PosSalesHistory(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "pos")
			return
		}
		token, ok := sessionToken(w, r, logg)
		if !ok {
			return
		}

		history, err := svc.SalesHistory(r.Context(), token, validators.QueryString(r, "date", 10))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}
