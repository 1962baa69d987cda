package http

import (
	"net/http"

	"github.com/bgmsons/catalog/pkg/api"
	"github.com/bgmsons/catalog/pkg/transport"
)

// handleListProducts handles GET /api/products.
func (a *Adapter) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := a.deps.Products.ListProducts(r.Context())
	if err != nil {
		a.writeStoreError(w, r, err, "products")
		return
	}
	if products == nil {
		products = []*api.Product{}
	}
	transport.WriteJSON(w, http.StatusOK, products)
}

// handleGetProduct handles GET /api/products/{id}.
func (a *Adapter) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	p, err := a.deps.Products.GetProduct(r.Context(), id)
	if err != nil {
		a.writeStoreError(w, r, err, "product "+id)
		return
	}
	transport.WriteJSON(w, http.StatusOK, p)
}

// handleCreateProduct handles POST /api/products. The id is always
// assigned by the server.
func (a *Adapter) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var p api.Product
	if !a.decodeJSON(w, r, &p) {
		return
	}
	if apiErr := api.ValidateProduct(&p); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	p.ID = api.NewProductID()
	if p.Created == "" {
		p.Created = a.config.Now().Format(api.CreatedLayout)
	}
	if p.Images == nil {
		p.Images = []string{}
	}

	if err := a.deps.Products.CreateProduct(r.Context(), &p); err != nil {
		a.writeStoreError(w, r, err, "product "+p.ID)
		return
	}

	w.Header().Set("Location", "/api/products/"+p.ID)
	transport.WriteJSON(w, http.StatusCreated, &p)
}

// handleUpdateProduct handles PUT /api/products/{id}. The body replaces the
// stored product; an omitted created date keeps the stored one.
func (a *Adapter) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var p api.Product
	if !a.decodeJSON(w, r, &p) {
		return
	}
	if apiErr := api.ValidateProduct(&p); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	existing, err := a.deps.Products.GetProduct(r.Context(), id)
	if err != nil {
		a.writeStoreError(w, r, err, "product "+id)
		return
	}

	p.ID = id
	if p.Created == "" {
		p.Created = existing.Created
	}
	if p.Images == nil {
		p.Images = []string{}
	}

	if err := a.deps.Products.UpdateProduct(r.Context(), &p); err != nil {
		a.writeStoreError(w, r, err, "product "+id)
		return
	}
	transport.WriteJSON(w, http.StatusOK, &p)
}

// handleDeleteProduct handles DELETE /api/products/{id}.
func (a *Adapter) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	if err := a.deps.Products.DeleteProduct(r.Context(), id); err != nil {
		a.writeStoreError(w, r, err, "product "+id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// productID reads and validates the {id} path value.
func productID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if !api.ValidateProductID(id) {
		transport.WriteAPIError(w, api.NewInvalidRequestError("id", "malformed product ID"))
		return "", false
	}
	return id, true
}
