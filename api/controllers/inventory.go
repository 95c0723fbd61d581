package controllers

import (
	"net/http"

	"github.com/pharmalink/pharmacy-pos/api/responses"
	"github.com/pharmalink/pharmacy-pos/api/validators"
	"github.com/pharmalink/pharmacy-pos/internal/inventory"
	"github.com/pharmalink/pharmacy-pos/pkg/enums"
	pkgerrors "github.com/pharmalink/pharmacy-pos/pkg/errors"
	"github.com/pharmalink/pharmacy-pos/pkg/logger"
)

const maxSearchLength = 120

// InventoryList returns the stocked medications filtered by ?search= and ?filter=.
func InventoryList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "inventory")
			return
		}
		token, ok := sessionToken(w, r, logg)
		if !ok {
			return
		}

		filter, err := enums.ParseInventoryFilter(validators.QueryString(r, "filter", 32))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid filter").
				WithDetails(map[string]any{"field": "filter"}))
			return
		}

		result, err := svc.List(r.Context(), token, inventory.Query{
			Search: validators.QueryString(r, "search", maxSearchLength),
			Filter: filter,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func InventoryAdd(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "inventory")
			return
		}
		token, ok := sessionToken(w, r, logg)
		if !ok {
			return
		}

		var body inventory.AddRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Add(r.Context(), token, body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"medicationId": body.MedicationID})
	}
}

func InventoryUpdate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "inventory")
			return
		}
		token, ok := sessionToken(w, r, logg)
		if !ok {
			return
		}

		var body inventory.UpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Update(r.Context(), token, body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"medicationId": body.MedicationID})
	}
}

// InventorySuggestions looks up catalogue entries for ?q=. Lookup failures
// yield an empty list.
func InventorySuggestions(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "inventory")
			return
		}
		token, ok := sessionToken(w, r, logg)
		if !ok {
			return
		}

		suggestions := svc.Suggest(r.Context(), token, validators.QueryString(r, "q", maxSearchLength))
		if suggestions == nil {
			suggestions = []inventory.Suggestion{}
		}
		responses.WriteSuccess(w, suggestions)
	}
}
