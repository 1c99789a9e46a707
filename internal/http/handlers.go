package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/inventory-register-service/internal/activity"
	"github.com/fairyhunter13/inventory-register-service/internal/cart"
	"github.com/fairyhunter13/inventory-register-service/internal/config"
	httpopenapi "github.com/fairyhunter13/inventory-register-service/internal/http/openapi"
	"github.com/fairyhunter13/inventory-register-service/internal/model"
	"github.com/fairyhunter13/inventory-register-service/internal/money"
	"github.com/fairyhunter13/inventory-register-service/internal/queue"
	"github.com/fairyhunter13/inventory-register-service/internal/register"
	"github.com/fairyhunter13/inventory-register-service/internal/view"
)

// App holds the service dependencies and the single operator's session
// state. mu serializes every cart, listing and settings access so the
// engines run one request at a time.
type App struct {
	Cfg      config.Config
	Register *register.Service
	Manager  *queue.Manager
	Recorder *activity.Recorder

	mu       sync.Mutex
	cart     *cart.Cart
	listing  *view.Listing
	settings Settings

	closing atomic.Bool
	started time.Time
}

// Settings are the operator-editable dashboard settings.
type Settings struct {
	CompanyName    string `json:"company_name"`
	CurrencySymbol string `json:"currency_symbol"`
}

// NewApp builds the application with a fresh cart and listing.
func NewApp(cfg config.Config, svc *register.Service, m *queue.Manager, rec *activity.Recorder) *App {
	return &App{
		Cfg:      cfg,
		Register: svc,
		Manager:  m,
		Recorder: rec,
		cart:     cart.New(svc.Catalog()),
		listing:  view.NewListing(cfg.PageSize),
		settings: Settings{CompanyName: cfg.CompanyName, CurrencySymbol: cfg.CurrencySymbol},
		started:  time.Now(),
	}
}

// StartShutdown stops accepting writes and closes event intake.
func (a *App) StartShutdown() {
	a.closing.Store(true)
	a.Manager.CloseIntake()
}

// IsClosing reports whether shutdown has begun.
func (a *App) IsClosing() bool { return a.closing.Load() || a.Manager.IsShuttingDown() }

// decodeJSON enforces a JSON content type and rejects unknown fields. An
// empty body is accepted when optional is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
	if optional && r.ContentLength == 0 {
		return true
	}
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return false
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return true
		}
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

// priceValue accepts a JSON number or a display string such as "€12.34".
type priceValue struct {
	decimal.Decimal
	set bool
}

func (p *priceValue) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		d, err := money.Parse(s)
		if err != nil {
			return err
		}
		p.Decimal, p.set = d, true
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return err
	}
	p.Decimal, p.set = d, true
	return nil
}

type productRequest struct {
	Name      string     `json:"name"`
	SKU       string     `json:"sku"`
	Category  string     `json:"category"`
	Price     priceValue `json:"price"`
	Quantity  *int       `json:"quantity"`
	Image     string     `json:"image"`
	CreatedAt *time.Time `json:"created_at"`
}

func (p productRequest) input() (register.ProductInput, string) {
	if !p.Price.set {
		return register.ProductInput{}, "price is required"
	}
	if p.Quantity == nil {
		return register.ProductInput{}, "quantity is required"
	}
	in := register.ProductInput{
		Name: p.Name, SKU: p.SKU, Category: p.Category,
		Price: p.Price.Decimal, Quantity: *p.Quantity, Image: p.Image,
	}
	if p.CreatedAt != nil {
		in.CreatedAt = *p.CreatedAt
	}
	return in, ""
}

func parseViewParams(q url.Values) (view.Params, string) {
	p := view.Params{
		Search:   q.Get("q"),
		Category: q.Get("category"),
		Status:   q.Get("status"),
	}
	key, err := view.ParseSortKey(q.Get("sort"))
	if err != nil {
		return p, err.Error()
	}
	dir, err := view.ParseSortDir(q.Get("dir"))
	if err != nil {
		return p, err.Error()
	}
	p.SortKey, p.SortDir = key, dir
	if p.Status != "" && p.Status != view.All {
		if _, err := model.ParseStockStatus(p.Status); err != nil {
			return p, err.Error()
		}
	}
	if s := q.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return p, "page must be an integer"
		}
		p.Page = n
	}
	return p, ""
}

type pageResponse struct {
	view.Page
	Params view.Params `json:"params"`
}

func (a *App) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	params, msg := parseViewParams(r.URL.Query())
	if msg != "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", msg)
		return
	}
	products, err := a.Register.Catalog().List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	a.mu.Lock()
	page := a.listing.Update(products, params)
	current := a.listing.Params()
	a.mu.Unlock()
	writeJSON(w, http.StatusOK, pageResponse{Page: page, Params: current})
}

func (a *App) getProductHandler(w http.ResponseWriter, r *http.Request) {
	p, err := a.Register.Catalog().Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *App) createProductHandler(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	in, msg := req.input()
	if msg != "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", msg)
		return
	}
	p, err := a.Register.CreateProduct(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (a *App) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	in, msg := req.input()
	if msg != "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", msg)
		return
	}
	p, err := a.Register.EditProduct(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *App) categoriesHandler(w http.ResponseWriter, r *http.Request) {
	products, err := a.Register.Catalog().List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": view.Categories(products)})
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	st := a.Manager.Stats()
	m := map[string]any{
		"events_enqueued":  st.Enqueued,
		"events_processed": st.Processed,
		"backlog_size":     st.Backlog,
		"queue_depth":      st.Depth,
		"worker_count":     a.Manager.WorkerCount(),
		"activity_records": a.Recorder.Log.Len(),
		"unread_alerts":    a.Recorder.Inbox.Unread(),
		"uptime_sec":       time.Since(a.started).Seconds(),
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Inventory Register API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
