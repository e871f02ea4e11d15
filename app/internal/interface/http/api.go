package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domadmin "example.com/cleantec-orders/app/internal/domain/admin"
	domcart "example.com/cleantec-orders/app/internal/domain/cart"
	domcheckout "example.com/cleantec-orders/app/internal/domain/checkout"
	domcustomer "example.com/cleantec-orders/app/internal/domain/customer"
	domorder "example.com/cleantec-orders/app/internal/domain/order"
	domproduct "example.com/cleantec-orders/app/internal/domain/product"
	"example.com/cleantec-orders/app/internal/infra/catalogcsv"
	authuc "example.com/cleantec-orders/app/internal/usecase/auth"
	categoryuc "example.com/cleantec-orders/app/internal/usecase/category"
	checkoutuc "example.com/cleantec-orders/app/internal/usecase/checkout"
	customeruc "example.com/cleantec-orders/app/internal/usecase/customer"
	orderuc "example.com/cleantec-orders/app/internal/usecase/order"
	productuc "example.com/cleantec-orders/app/internal/usecase/product"
)

type API struct {
	authSvc     *authuc.Service
	categorySvc *categoryuc.Service
	productSvc  *productuc.Service
	customerSvc *customeruc.Service
	orderSvc    *orderuc.Service
	checkout    *checkoutuc.Manager
	tokenSvc    authuc.TokenService
	metrics     Metrics
	logger      *zap.Logger
	validator   *validator.Validate
}

// Metrics is the optional prometheus surface of the router.
type Metrics interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

type Dependencies struct {
	AuthService     *authuc.Service
	CategoryService *categoryuc.Service
	ProductService  *productuc.Service
	CustomerService *customeruc.Service
	OrderService    *orderuc.Service
	Checkout        *checkoutuc.Manager
	TokenService    authuc.TokenService
	Metrics         Metrics
	Logger          *zap.Logger
}

func NewAPI(deps Dependencies) *API {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		authSvc:     deps.AuthService,
		categorySvc: deps.CategoryService,
		productSvc:  deps.ProductService,
		customerSvc: deps.CustomerService,
		orderSvc:    deps.OrderService,
		checkout:    deps.Checkout,
		tokenSvc:    deps.TokenService,
		metrics:     deps.Metrics,
		logger:      logger,
		validator:   validator.New(),
	}
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	if a.metrics != nil {
		r.Use(a.metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", a.metrics.Handler())
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", a.handleListProducts)
		r.Get("/products/{id}", a.handleGetProduct)
		r.Get("/categories", a.handleListCategories)

		r.Get("/clients", a.handleLookupClient)
		r.With(chimw.AllowContentType("application/json")).Post("/orders", a.handleCreateOrder)

		r.Route("/checkout/sessions", func(cr chi.Router) {
			cr.Use(chimw.AllowContentType("application/json"))
			cr.Post("/", a.handleStartCheckout)
			cr.Route("/{sid}", func(sr chi.Router) {
				sr.Get("/", a.handleGetCheckout)
				sr.Delete("/", a.handleEndCheckout)
				sr.Post("/cart/items", a.handleAddCartItem)
				sr.Put("/cart/items/{pid}", a.handleUpdateCartItem)
				sr.Delete("/cart/items/{pid}", a.handleRemoveCartItem)
				sr.Delete("/cart", a.handleClearCart)
				sr.Post("/proceed", a.handleProceed)
				sr.Post("/back", a.handleBack)
				sr.Post("/validate", a.handleValidateClient)
				sr.Post("/submit", a.handleSubmitOrder)
				sr.Post("/complete", a.handleCompleteCheckout)
			})
		})

		r.With(chimw.AllowContentType("application/json")).Post("/admin/login", a.handleLogin)

		r.Group(func(ar chi.Router) {
			ar.Use(a.authMiddleware)
			ar.Use(a.requireRoles(domadmin.RoleAdmin, domadmin.RoleSuperAdmin))

			ar.Route("/admin", func(admin chi.Router) {
				admin.Route("/products", func(rr chi.Router) {
					rr.Get("/", a.handleListProductsAdmin)
					rr.Post("/", a.handleCreateProduct)
					rr.Post("/import", a.handleImportProducts)
					rr.Get("/{id}", a.handleGetProduct)
					rr.Put("/{id}", a.handleUpdateProduct)
					rr.Delete("/{id}", a.handleDeleteProduct)
				})

				admin.Route("/customers", func(rr chi.Router) {
					rr.Get("/", a.handleListCustomers)
					rr.Post("/", a.handleCreateCustomer)
					rr.Get("/{id}", a.handleGetCustomer)
					rr.Put("/{id}", a.handleUpdateCustomer)
					rr.Delete("/{id}", a.handleDeleteCustomer)
				})

				admin.Route("/orders", func(rr chi.Router) {
					rr.Get("/", a.handleListOrders)
					rr.Get("/{id}", a.handleGetOrder)
					rr.Patch("/{id}", a.handleUpdateOrderStatus)
					rr.Get("/{id}/pdf", a.handleOrderDocument)
				})
			})
		})
	})

	return r
}

func (a *API) decodeAndValidate(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return a.validator.Struct(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func respondError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func parseIDParam(r *http.Request, key string) (int64, error) {
	idStr := chi.URLParam(r, key)
	return strconv.ParseInt(idStr, 10, 64)
}

func handleDomainError(w http.ResponseWriter, err error) {
	respondError(w, domainStatus(err), err)
}

// domainStatus maps domain errors to HTTP codes. Checkout errors go first
// because lookup and submission failures wrap arbitrary causes.
func domainStatus(err error) int {
	switch {
	case errors.Is(err, domcheckout.ErrClientLookupFailed),
		errors.Is(err, domcheckout.ErrSubmissionFailed):
		return http.StatusBadGateway
	case errors.Is(err, domcheckout.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domcheckout.ErrInvalidTransition),
		errors.Is(err, domcheckout.ErrOrderNotSubmitted),
		errors.Is(err, domcheckout.ErrCartLocked),
		errors.Is(err, domcheckout.ErrAlreadySubmitted),
		errors.Is(err, domcheckout.ErrRequestInFlight):
		return http.StatusConflict
	case errors.Is(err, domcheckout.ErrEmptyCart),
		errors.Is(err, domcheckout.ErrClientNotValidated):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domcustomer.ErrCustomerNotFound),
		errors.Is(err, domproduct.ErrProductNotFound),
		errors.Is(err, domorder.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, domcustomer.ErrClientNumberExists),
		errors.Is(err, domcustomer.ErrCustomerHasOrders),
		errors.Is(err, domorder.ErrOrderNumberConflict):
		return http.StatusConflict
	case errors.Is(err, domadmin.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domcustomer.ErrEmptyClientNumber),
		errors.Is(err, domcustomer.ErrInvalidCustomer),
		errors.Is(err, domproduct.ErrInvalidProduct),
		errors.Is(err, domcart.ErrInvalidPrice),
		errors.Is(err, domorder.ErrInvalidPayload),
		errors.Is(err, domorder.ErrTotalsMismatch),
		errors.Is(err, domorder.ErrEmptyOrderItems),
		errors.Is(err, domorder.ErrInvalidStatus),
		errors.Is(err, domadmin.ErrInvalidCredential),
		errors.Is(err, catalogcsv.ErrEmptyFile),
		errors.Is(err, catalogcsv.ErrMissingColumns):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
