package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dramirezh/tienda-backend/api/middleware"
	"github.com/dramirezh/tienda-backend/api/responses"
	"github.com/dramirezh/tienda-backend/api/validators"
	orderssvc "github.com/dramirezh/tienda-backend/internal/orders"
	"github.com/dramirezh/tienda-backend/pkg/db/models"
	"github.com/dramirezh/tienda-backend/pkg/logger"
)

type orderDetailResponse struct {
	ProductID   uint            `json:"productoId"`
	ProductName string          `json:"nombre"`
	Quantity    int             `json:"cantidad"`
	UnitPrice   decimal.Decimal `json:"precioUnitario"`
	LineTotal   decimal.Decimal `json:"totalLinea"`
}

type orderResponse struct {
	ID         uint                  `json:"id"`
	Status     string                `json:"estado"`
	Subtotal   decimal.Decimal       `json:"subtotal"`
	Discount   decimal.Decimal       `json:"descuento"`
	Tax        decimal.Decimal       `json:"impuesto"`
	Shipping   decimal.Decimal       `json:"envio"`
	GrandTotal decimal.Decimal       `json:"total"`
	CreatedAt  time.Time             `json:"creadoEn"`
	Details    []orderDetailResponse `json:"detalles"`
}

func newOrderResponse(order *models.Order) orderResponse {
	details := make([]orderDetailResponse, 0, len(order.Details))
	for _, d := range order.Details {
		details = append(details, orderDetailResponse{
			ProductID:   d.ProductID,
			ProductName: d.ProductName,
			Quantity:    d.Quantity,
			UnitPrice:   d.UnitPrice,
			LineTotal:   d.LineTotal,
		})
	}
	return orderResponse{
		ID:         order.ID,
		Status:     string(order.Status),
		Subtotal:   order.Subtotal,
		Discount:   order.Discount,
		Tax:        order.Tax,
		Shipping:   order.Shipping,
		GrandTotal: order.GrandTotal,
		CreatedAt:  order.CreatedAt,
		Details:    details,
	}
}

// PedidosList returns the caller's order history, newest first.
func PedidosList(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]orderResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newOrderResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// PedidosGet returns one of the caller's orders.
func PedidosGet(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseIDParam(r, "pedidoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), middleware.UserIDFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}
