package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/dramirezh/tienda-backend/api/responses"
	"github.com/dramirezh/tienda-backend/api/validators"
	catalogsvc "github.com/dramirezh/tienda-backend/internal/catalog"
	"github.com/dramirezh/tienda-backend/pkg/db/models"
	pkgerrors "github.com/dramirezh/tienda-backend/pkg/errors"
	"github.com/dramirezh/tienda-backend/pkg/logger"
)

type productResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"nombre"`
	Description *string         `json:"descripcion,omitempty"`
	Price       decimal.Decimal `json:"precio"`
	Stock       int             `json:"stock"`
	Active      bool            `json:"activo"`
	Images      []string        `json:"imagenes,omitempty"`
}

func newProductResponse(p *models.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Active:      p.Active,
		Images:      p.Images,
	}
}

func newProductListResponse(rows []models.Product) []productResponse {
	out := make([]productResponse, 0, len(rows))
	for i := range rows {
		out = append(out, newProductResponse(&rows[i]))
	}
	return out
}

// ProductosList returns the catalog. Shoppers see active listings only;
// admins may pass ?todos=1 to include deactivated ones.
func ProductosList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		onlyActive := r.URL.Query().Get("todos") != "1"

		rows, err := svc.List(r.Context(), onlyActive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductListResponse(rows))
	}
}

// ProductosGet returns a single listing.
func ProductosGet(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "productoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(product))
	}
}

type createProductRequest struct {
	Name        string   `json:"nombre" validate:"required"`
	Description *string  `json:"descripcion"`
	Price       string   `json:"precio" validate:"required"`
	Stock       int      `json:"stock" validate:"gte=0"`
	Images      []string `json:"imagenes"`
}

// ProductosCreate publishes a new listing. Admin only.
func ProductosCreate(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := parsePrice(payload.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), catalogsvc.CreateProductInput{
			Name:        payload.Name,
			Description: payload.Description,
			Price:       price,
			Stock:       payload.Stock,
			Images:      payload.Images,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newProductResponse(product))
	}
}

type updateProductRequest struct {
	Name        *string  `json:"nombre"`
	Description *string  `json:"descripcion"`
	Price       *string  `json:"precio"`
	Active      *bool    `json:"activo"`
	Images      []string `json:"imagenes"`
}

// ProductosUpdate edits listing fields. Stock is not editable here; use the
// restock endpoint so every stock write goes through the ledger.
func ProductosUpdate(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "productoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalogsvc.UpdateProductInput{
			Name:        payload.Name,
			Description: payload.Description,
			Active:      payload.Active,
			Images:      payload.Images,
		}
		if payload.Price != nil {
			price, perr := parsePrice(*payload.Price)
			if perr != nil {
				responses.WriteError(r.Context(), logg, w, perr)
				return
			}
			input.Price = &price
		}

		product, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(product))
	}
}

// ProductosDelete retires a listing. The row survives so order history keeps
// pointing at it; carts holding it will fail validation from now on.
func ProductosDelete(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "productoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

type restockRequest struct {
	Quantity int `json:"cantidad" validate:"required,gt=0"`
}

// ProductosRestock adds stock through the inventory ledger.
func ProductosRestock(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "productoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload restockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Restock(r.Context(), id, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(product))
	}
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "precio must be a decimal amount")
	}
	if price.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "precio must not be negative")
	}
	return price.Round(2), nil
}
