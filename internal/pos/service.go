package pos

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pharmalink/pharmacy-pos/internal/backend"
	"github.com/pharmalink/pharmacy-pos/internal/cart"
	"github.com/pharmalink/pharmacy-pos/internal/inventory"
	"github.com/pharmalink/pharmacy-pos/pkg/checkout"
	"github.com/pharmalink/pharmacy-pos/pkg/enums"
	pkgerrors "github.com/pharmalink/pharmacy-pos/pkg/errors"
	"github.com/pharmalink/pharmacy-pos/pkg/logger"
	"github.com/pharmalink/pharmacy-pos/pkg/metrics"
	"github.com/shopspring/decimal"
)

const (
	outOfStockMessage = "This medication is out of stock."
	emptyCartMessage  = "Add items to the cart before checkout."
)

// Service defines the behavior needed by the point-of-sale controller.
type Service interface {
	RefreshInventory(ctx context.Context, token string) ([]inventory.Medication, error)
	Medications(search string) []inventory.Medication
	AddToCart(medicationID string) (CartView, error)
	Increase(medicationID string) (CartView, error)
	Decrease(medicationID string) CartView
	Remove(medicationID string) CartView
	Clear() CartView
	Cart() CartView
	Checkout(ctx context.Context, token string, req CheckoutRequest) (*CheckoutResult, error)
	SalesHistory(ctx context.Context, token, date string) (*SalesHistory, error)
}

type inventoryLister interface {
	List(ctx context.Context, token string) ([]inventory.Medication, error)
}

type salesRepository interface {
	RecordSale(ctx context.Context, token, idempotencyKey string, body saleBody) error
	ListSales(ctx context.Context, token, date string) ([]Sale, error)
}

type service struct {
	inventory      inventoryLister
	sales          salesRepository
	cart           *cart.Handle
	metrics        *metrics.CheckoutMetrics
	paymentMethods []enums.PaymentMethod
	logg           *logger.Logger
	now            func() time.Time
	newKey         func() string

	mu         sync.Mutex
	snapshot   []inventory.Medication
	byKey      map[cart.MedicationID]inventory.Medication
	saleKey    string
	saleMethod enums.PaymentMethod
	checkout   sync.Mutex
}

// ServiceParams bundles the dependencies required to build a point-of-sale service.
type ServiceParams struct {
	Inventory      inventoryLister
	Sales          salesRepository
	Cart           *cart.Handle
	Metrics        *metrics.CheckoutMetrics
	PaymentMethods []string
	Logger         *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory repository is required")
	}
	if params.Sales == nil {
		return nil, fmt.Errorf("sales repository is required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart handle is required")
	}
	methods, err := parsePaymentMethods(params.PaymentMethods)
	if err != nil {
		return nil, err
	}
	newKey := func() string { return uuid.NewString() }
	return &service{
		inventory:      params.Inventory,
		sales:          params.Sales,
		cart:           params.Cart,
		metrics:        params.Metrics,
		paymentMethods: methods,
		logg:           params.Logger,
		now:            time.Now,
		newKey:         newKey,
		byKey:          map[cart.MedicationID]inventory.Medication{},
		saleKey:        newKey(),
	}, nil
}

func parsePaymentMethods(raw []string) ([]enums.PaymentMethod, error) {
	if len(raw) == 0 {
		return []enums.PaymentMethod{
			enums.PaymentMethodCash,
			enums.PaymentMethodCard,
			enums.PaymentMethodTransfer,
			enums.PaymentMethodOther,
		}, nil
	}
	out := make([]enums.PaymentMethod, 0, len(raw))
	for _, value := range raw {
		method, err := enums.ParsePaymentMethod(strings.TrimSpace(value))
		if err != nil {
			return nil, err
		}
		out = append(out, method)
	}
	return out, nil
}

// RefreshInventory replaces the stock snapshot used to bound cart quantities.
func (s *service) RefreshInventory(ctx context.Context, token string) ([]inventory.Medication, error) {
	meds, err := s.inventory.List(ctx, token)
	if err != nil {
		return nil, err
	}
	byKey := make(map[cart.MedicationID]inventory.Medication, len(meds))
	for _, med := range meds {
		byKey[med.Key()] = med
	}

	s.mu.Lock()
	s.snapshot = meds
	s.byKey = byKey
	s.mu.Unlock()

	return s.Medications(""), nil
}

// Medications returns the snapshot narrowed by a case-insensitive name search.
func (s *service) Medications(search string) []inventory.Medication {
	search = strings.ToLower(strings.TrimSpace(search))

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]inventory.Medication, 0, len(s.snapshot))
	for _, med := range s.snapshot {
		if search != "" && !matchesSearch(med, search) {
			continue
		}
		out = append(out, med)
	}
	return out
}

func matchesSearch(med inventory.Medication, search string) bool {
	for _, name := range []string{med.Name, med.BrandName, med.GenericName} {
		if strings.Contains(strings.ToLower(name), search) {
			return true
		}
	}
	return false
}

func (s *service) lookup(id cart.MedicationID) (inventory.Medication, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	med, ok := s.byKey[id]
	return med, ok
}

func (s *service) AddToCart(medicationID string) (CartView, error) {
	id := cart.MedicationID(strings.TrimSpace(medicationID))
	if id.IsZero() {
		return CartView{}, pkgerrors.New(pkgerrors.CodeValidation, "medication id is required")
	}
	med, ok := s.lookup(id)
	if !ok {
		return CartView{}, pkgerrors.New(pkgerrors.CodeNotFound, "Medication is not in the loaded inventory.")
	}
	if med.Stock < 1 {
		return CartView{}, pkgerrors.New(pkgerrors.CodeValidation, outOfStockMessage).
			WithDetails(map[string]any{"title": "Out of Stock", "medicationId": id})
	}
	if err := s.checkStockLimit(med, id); err != nil {
		return CartView{}, err
	}
	return s.dispatch(cart.AddItem{
		MedicationID: id,
		Name:         med.Name,
		UnitPrice:    med.Price,
		Quantity:     1,
	}), nil
}

// Increase adds one unit to an existing line. Medications missing from the
// snapshot are left untouched.
func (s *service) Increase(medicationID string) (CartView, error) {
	id := cart.MedicationID(strings.TrimSpace(medicationID))
	med, ok := s.lookup(id)
	if !ok {
		return s.Cart(), nil
	}
	if err := s.checkStockLimit(med, id); err != nil {
		return CartView{}, err
	}
	return s.dispatch(cart.AdjustQuantity{MedicationID: id, Delta: 1}), nil
}

// Decrease drops one unit, removing the line once it would reach zero.
func (s *service) Decrease(medicationID string) CartView {
	id := cart.MedicationID(strings.TrimSpace(medicationID))
	line, ok := s.cart.Snapshot().Find(id)
	if ok && line.Quantity > 1 {
		return s.dispatch(cart.AdjustQuantity{MedicationID: id, Delta: -1})
	}
	return s.dispatch(cart.Remove{MedicationID: id})
}

func (s *service) Remove(medicationID string) CartView {
	return s.dispatch(cart.Remove{MedicationID: cart.MedicationID(strings.TrimSpace(medicationID))})
}

func (s *service) Clear() CartView {
	return s.dispatch(cart.Clear{})
}

func (s *service) Cart() CartView {
	return viewOf(s.cart.Snapshot())
}

func (s *service) checkStockLimit(med inventory.Medication, id cart.MedicationID) error {
	current := 0
	if line, ok := s.cart.Snapshot().Find(id); ok {
		current = line.Quantity
	}
	if current+1 > med.Stock {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "Only %d in stock. You cannot add more.", med.Stock).
			WithDetails(map[string]any{"title": "Stock Limit", "medicationId": id, "available": med.Stock})
	}
	return nil
}

// dispatch applies a cart change. Any change that alters the cart starts a new
// sale, so the idempotency key rotates with it.
func (s *service) dispatch(action cart.Action) CartView {
	before := s.cart.Snapshot()
	after := s.cart.Dispatch(action)
	if !sameLines(before, after) {
		s.rotateSaleKey()
	}
	return viewOf(after)
}

func (s *service) rotateSaleKey() {
	s.mu.Lock()
	s.saleKey = s.newKey()
	s.saleMethod = ""
	s.mu.Unlock()
}

// saleKeyFor returns the key for a sale paid with method. A key is bound to the
// first method tried with it, so switching method after a failure is a new sale.
func (s *service) saleKeyFor(method enums.PaymentMethod) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saleMethod != "" && s.saleMethod != method {
		s.saleKey = s.newKey()
	}
	s.saleMethod = method
	return s.saleKey
}

func (s *service) currentSaleKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saleKey
}

// Checkout records the cart as a sale. Local checks run before any backend
// call. A failed post leaves the cart and its idempotency key in place, so a
// retry with the same payment method cannot record the sale twice.
func (s *service) Checkout(ctx context.Context, token string, req CheckoutRequest) (*CheckoutResult, error) {
	s.checkout.Lock()
	defer s.checkout.Unlock()

	state := s.cart.Snapshot()
	if state.IsEmpty() {
		s.metrics.IncAttempt(metrics.CheckoutRejected)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, emptyCartMessage).
			WithDetails(map[string]any{"title": "Cart is empty"})
	}

	if err := checkout.ValidateStock(s.stockInputs(state)); err != nil {
		s.metrics.IncAttempt(metrics.CheckoutRejected)
		return nil, err
	}

	method, err := s.resolvePaymentMethod(req.PaymentMethod)
	if err != nil {
		s.metrics.IncAttempt(metrics.CheckoutRejected)
		return nil, err
	}

	total := cart.Total(state)
	body := saleBody{
		Items:         make([]saleItemBody, 0, len(state.Lines)),
		Total:         backend.Number(total),
		PaymentMethod: method.String(),
	}
	for _, line := range state.Lines {
		body.Items = append(body.Items, saleItemBody{
			MedicationID: line.MedicationID.String(),
			Name:         line.Name,
			Price:        backend.Number(line.UnitPrice),
			Quantity:     line.Quantity,
		})
	}

	key := s.saleKeyFor(method)
	logCtx := ctx
	if s.logg != nil {
		logCtx = s.logg.WithFields(s.logg.WithSaleKey(ctx, key), map[string]any{
			"payment_method": method.String(),
			"total":          total.String(),
			"item_count":     cart.ItemCount(state),
		})
	}

	if err := s.sales.RecordSale(ctx, token, key, body); err != nil {
		s.metrics.IncAttempt(metrics.CheckoutFailed)
		if s.logg != nil {
			s.logg.Warn(s.logg.WithFields(logCtx, map[string]any{
				"error":     err.Error(),
				"retryable": pkgerrors.IsRetryable(err),
			}), "pos.sale_failed")
		}
		return nil, err
	}

	s.settle(state)
	s.metrics.IncAttempt(metrics.CheckoutSucceeded)
	s.metrics.AddRevenue(method.String(), total)
	if s.logg != nil {
		s.logg.Info(logCtx, "pos.sale_recorded")
	}

	return &CheckoutResult{
		Total:         total,
		ItemCount:     cart.ItemCount(state),
		PaymentMethod: method.String(),
		Message:       fmt.Sprintf("The sale has been recorded. Payment: %s", method),
		Cart:          s.Cart(),
	}, nil
}

// settle takes the sold quantities off the cart. Lines added or topped up while
// the sale was in flight stay behind for the next sale.
func (s *service) settle(sold cart.State) {
	for _, line := range sold.Lines {
		s.cart.Dispatch(cart.AdjustQuantity{MedicationID: line.MedicationID, Delta: -line.Quantity})
	}
	s.rotateSaleKey()
}

func (s *service) stockInputs(state cart.State) []checkout.StockValidationInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	inputs := make([]checkout.StockValidationInput, 0, len(state.Lines))
	for _, line := range state.Lines {
		med, ok := s.byKey[line.MedicationID]
		inputs = append(inputs, checkout.StockValidationInput{
			MedicationID: line.MedicationID.String(),
			Name:         line.Name,
			Known:        ok,
			Available:    med.Stock,
			Requested:    line.Quantity,
		})
	}
	return inputs
}

func (s *service) resolvePaymentMethod(raw string) (enums.PaymentMethod, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.paymentMethods[0], nil
	}
	for _, method := range s.paymentMethods {
		if strings.EqualFold(method.String(), raw) {
			return method, nil
		}
	}
	allowed := make([]string, 0, len(s.paymentMethods))
	for _, method := range s.paymentMethods {
		allowed = append(allowed, method.String())
	}
	return "", pkgerrors.Newf(pkgerrors.CodeValidation, "Unsupported payment method %q.", raw).
		WithDetails(map[string]any{"allowed": allowed})
}

// SalesHistory lists the sales of date (YYYY-MM-DD), defaulting to today in UTC.
func (s *service) SalesHistory(ctx context.Context, token, date string) (*SalesHistory, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		date = s.now().UTC().Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Date must be YYYY-MM-DD.")
	}

	sales, err := s.sales.ListSales(ctx, token, date)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for i := range sales {
		if sales[i].Items == nil {
			sales[i].Items = []SaleItem{}
		}
		total = total.Add(sales[i].Total)
	}
	return &SalesHistory{Date: date, Sales: sales, Total: total, Count: len(sales)}, nil
}

func sameLines(a, b cart.State) bool {
	if len(a.Lines) != len(b.Lines) {
		return false
	}
	for i := range a.Lines {
		if a.Lines[i].MedicationID != b.Lines[i].MedicationID || a.Lines[i].Quantity != b.Lines[i].Quantity {
			return false
		}
	}
	return true
}
