package httpapi

import (
	"expvar"
	"net/http"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", app.listProductsHandler)
	mux.HandleFunc("POST /products", app.createProductHandler)
	mux.HandleFunc("GET /products/{id}", app.getProductHandler)
	mux.HandleFunc("PUT /products/{id}", app.updateProductHandler)
	mux.HandleFunc("GET /categories", app.categoriesHandler)

	mux.HandleFunc("GET /cart", app.getCartHandler)
	mux.HandleFunc("POST /cart/items", app.addCartItemHandler)
	mux.HandleFunc("PATCH /cart/items/{id}", app.changeQuantityHandler)
	mux.HandleFunc("DELETE /cart/items/{id}", app.removeCartItemHandler)
	mux.HandleFunc("POST /cart/scan", app.scanHandler)
	mux.HandleFunc("PUT /cart/query", app.setQueryHandler)
	mux.HandleFunc("POST /cart/commit", app.commitHandler)

	mux.HandleFunc("GET /invoices", app.listInvoicesHandler)
	mux.HandleFunc("GET /invoices/{id}", app.getInvoiceHandler)
	mux.HandleFunc("POST /invoices/{id}/pay", app.payInvoiceHandler)
	mux.HandleFunc("GET /activity", app.activityHandler)
	mux.HandleFunc("GET /notifications", app.notificationsHandler)
	mux.HandleFunc("POST /notifications/{id}/read", app.readNotificationHandler)
	mux.HandleFunc("POST /notifications/read-all", app.readAllNotificationsHandler)
	mux.HandleFunc("GET /settings", app.getSettingsHandler)
	mux.HandleFunc("PUT /settings", app.putSettingsHandler)

	mux.HandleFunc("GET /healthz", app.healthHandler)
	mux.HandleFunc("GET /debug/metrics", app.metricsHandler)
	mux.Handle("GET /debug/vars", expvar.Handler())
	mux.HandleFunc("GET /openapi.yaml", app.openapiHandler)
	mux.HandleFunc("GET /docs", app.docsHandler)
	return WithRequestID(WithLogging(WithShutdownGuard(app, mux)))
}
