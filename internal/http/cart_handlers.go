package httpapi

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/inventory-register-service/internal/cart"
	"github.com/fairyhunter13/inventory-register-service/internal/money"
)

type cartView struct {
	Lines        []cart.Line     `json:"lines"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Total        decimal.Decimal `json:"total"`
	TotalDisplay string          `json:"total_display"`
	Query        string          `json:"query"`
}

type cartResult struct {
	Changed bool     `json:"changed"`
	Cart    cartView `json:"cart"`
}

// snapshot must be called with a.mu held.
func (a *App) snapshot() cartView {
	return cartView{
		Lines:        a.cart.Lines(),
		Subtotal:     a.cart.Subtotal(),
		Total:        a.cart.Total(),
		TotalDisplay: money.Format(a.cart.Total(), a.settings.CurrencySymbol),
		Query:        a.cart.Query(),
	}
}

func (a *App) getCartHandler(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	v := a.snapshot()
	a.mu.Unlock()
	writeJSON(w, http.StatusOK, v)
}

func (a *App) addCartItemHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
	}
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if req.ProductID == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "product_id is required")
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	changed, err := a.cart.Add(r.Context(), req.ProductID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartResult{Changed: changed, Cart: a.snapshot()})
}

func (a *App) scanHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if !decodeJSON(w, r, &req, false) {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	changed, err := a.cart.Scan(r.Context(), req.Code)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartResult{Changed: changed, Cart: a.snapshot()})
}

func (a *App) changeQuantityHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int `json:"delta"`
	}
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if req.Delta != 1 && req.Delta != -1 {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "delta must be 1 or -1")
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	changed := a.cart.ChangeQuantity(r.PathValue("id"), req.Delta)
	writeJSON(w, http.StatusOK, cartResult{Changed: changed, Cart: a.snapshot()})
}

func (a *App) removeCartItemHandler(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	changed := a.cart.Remove(r.PathValue("id"))
	writeJSON(w, http.StatusOK, cartResult{Changed: changed, Cart: a.snapshot()})
}

func (a *App) setQueryHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if !decodeJSON(w, r, &req, false) {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cart.SetQuery(req.Query)
	writeJSON(w, http.StatusOK, a.snapshot())
}

func (a *App) commitHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Customer string `json:"customer"`
	}
	if !decodeJSON(w, r, &req, true) {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	receipt, err := a.Register.CompleteSale(r.Context(), a.cart, req.Customer)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}
