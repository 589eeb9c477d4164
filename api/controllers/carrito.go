package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/dramirezh/tienda-backend/api/middleware"
	"github.com/dramirezh/tienda-backend/api/responses"
	"github.com/dramirezh/tienda-backend/api/validators"
	cartsvc "github.com/dramirezh/tienda-backend/internal/cart"
	checkoutsvc "github.com/dramirezh/tienda-backend/internal/checkout"
	"github.com/dramirezh/tienda-backend/pkg/db/models"
	"github.com/dramirezh/tienda-backend/pkg/logger"
)

type cartItemResponse struct {
	ID        uint            `json:"id"`
	ProductID uint            `json:"productoId"`
	Quantity  int             `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precioUnitario"`
	LineTotal decimal.Decimal `json:"totalLinea"`
	Saved     bool            `json:"guardado"`
}

func newCartItemResponse(item *models.CartItem) cartItemResponse {
	return cartItemResponse{
		ID:        item.ID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		LineTotal: item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2),
		Saved:     item.SavedForLater,
	}
}

type cartTotalsResponse struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"descuento"`
	Tax        decimal.Decimal `json:"impuesto"`
	Shipping   decimal.Decimal `json:"envio"`
	GrandTotal decimal.Decimal `json:"total"`
}

type cartResponse struct {
	ID     uint               `json:"id"`
	State  string             `json:"estado"`
	Items  []cartItemResponse `json:"items"`
	Totals cartTotalsResponse `json:"totales"`
}

func newCartResponse(snapshot *checkoutsvc.Snapshot) cartResponse {
	items := make([]cartItemResponse, 0, len(snapshot.Cart.Items))
	for i := range snapshot.Cart.Items {
		items = append(items, newCartItemResponse(&snapshot.Cart.Items[i]))
	}
	return cartResponse{
		ID:    snapshot.Cart.ID,
		State: string(snapshot.Classification.State),
		Items: items,
		Totals: cartTotalsResponse{
			Subtotal:   snapshot.Totals.Subtotal,
			Discount:   snapshot.Totals.Discount,
			Tax:        snapshot.Totals.Tax,
			Shipping:   snapshot.Totals.Shipping,
			GrandTotal: snapshot.Totals.GrandTotal,
		},
	}
}

// CarritoGet returns the active cart with its validation state and totals.
func CarritoGet(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := svc.Snapshot(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(snapshot))
	}
}

type addItemRequest struct {
	ProductID uint `json:"productoId" validate:"required"`
	Quantity  int  `json:"cantidad" validate:"required,gt=0"`
}

// CarritoAddItem puts a product into the active cart.
func CarritoAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.AddItem(r.Context(), middleware.UserIDFromContext(r.Context()), payload.ProductID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCartItemResponse(item))
	}
}

type updateItemRequest struct {
	Quantity *int `json:"cantidad" validate:"required"`
}

// CarritoUpdateItem changes a line's quantity. Zero or less removes the line.
func CarritoUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := validators.ParseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateItemQuantity(r.Context(), middleware.UserIDFromContext(r.Context()), itemID, *payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if item == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		responses.WriteSuccess(w, newCartItemResponse(item))
	}
}

type saveItemRequest struct {
	Saved *bool `json:"guardado" validate:"required"`
}

// CarritoGuardarItem parks a line for later, or brings it back.
func CarritoGuardarItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := validators.ParseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload saveItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.SetSavedForLater(r.Context(), middleware.UserIDFromContext(r.Context()), itemID, *payload.Saved)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartItemResponse(item))
	}
}

// CarritoRemoveItem drops a line from the cart.
func CarritoRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := validators.ParseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveItem(r.Context(), middleware.UserIDFromContext(r.Context()), itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// CarritoClear empties the active cart.
func CarritoClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Clear(r.Context(), middleware.UserIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// CarritoCheckout converts the active cart into an order.
func CarritoCheckout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := svc.Convert(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}
