package pos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pharmalink/pharmacy-pos/internal/cart"
	"github.com/pharmalink/pharmacy-pos/internal/inventory"
	"github.com/pharmalink/pharmacy-pos/pkg/checkout"
	pkgerrors "github.com/pharmalink/pharmacy-pos/pkg/errors"
	"github.com/pharmalink/pharmacy-pos/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInventory struct {
	meds []inventory.Medication
	err  error
}

func (f *fakeInventory) List(context.Context, string) ([]inventory.Medication, error) {
	return f.meds, f.err
}

type recordedSale struct {
	token string
	key   string
	body  saleBody
}

type fakeSales struct {
	recordErr error
	recorded  []recordedSale
	sales     []Sale
	dates     []string
}

func (f *fakeSales) RecordSale(_ context.Context, token, key string, body saleBody) error {
	f.recorded = append(f.recorded, recordedSale{token: token, key: key, body: body})
	return f.recordErr
}

func (f *fakeSales) ListSales(_ context.Context, _ string, date string) ([]Sale, error) {
	f.dates = append(f.dates, date)
	return f.sales, nil
}

func stockedInventory() *fakeInventory {
	return &fakeInventory{meds: []inventory.Medication{
		{ID: "1", MedicationID: "A", Name: "Amoxicillin", Stock: 3, Price: decimal.NewFromInt(500)},
		{ID: "2", Name: "Bisacodyl", Stock: 10, Price: decimal.RequireFromString("200.50")},
		{ID: "3", MedicationID: "C", Name: "Cetirizine", Stock: 0, Price: decimal.NewFromInt(150)},
	}}
}

type fixture struct {
	svc      *service
	inv      *fakeInventory
	sales    *fakeSales
	handle   *cart.Handle
	registry *prometheus.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		inv:      stockedInventory(),
		sales:    &fakeSales{},
		handle:   cart.NewHandle(),
		registry: prometheus.NewRegistry(),
	}
	svc, err := NewService(ServiceParams{
		Inventory: f.inv,
		Sales:     f.sales,
		Cart:      f.handle,
		Metrics:   metrics.NewCheckoutMetrics(f.registry),
	})
	require.NoError(t, err)
	f.svc = svc.(*service)
	_, err = f.svc.RefreshInventory(context.Background(), "tok")
	require.NoError(t, err)
	return f
}

func TestNewServiceValidatesParams(t *testing.T) {
	_, err := NewService(ServiceParams{Sales: &fakeSales{}, Cart: cart.NewHandle()})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{Inventory: &fakeInventory{}, Cart: cart.NewHandle()})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{Inventory: &fakeInventory{}, Sales: &fakeSales{}})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{
		Inventory:      &fakeInventory{},
		Sales:          &fakeSales{},
		Cart:           cart.NewHandle(),
		PaymentMethods: []string{"Cash", "Crypto"},
	})
	assert.Error(t, err)
}

func TestMedicationsSearchesSnapshot(t *testing.T) {
	f := newFixture(t)

	assert.Len(t, f.svc.Medications(""), 3)
	found := f.svc.Medications("  bisa ")
	require.Len(t, found, 1)
	assert.Equal(t, "Bisacodyl", found[0].Name)
}

func TestAddToCartFreezesNameAndPrice(t *testing.T) {
	f := newFixture(t)

	view, err := f.svc.AddToCart("A")
	require.NoError(t, err)
	view, err = f.svc.AddToCart("2")
	require.NoError(t, err)

	require.Len(t, view.Lines, 2)
	assert.Equal(t, cart.MedicationID("A"), view.Lines[0].MedicationID)
	assert.Equal(t, cart.MedicationID("2"), view.Lines[1].MedicationID, "falls back to the inventory id")
	assert.Equal(t, "Bisacodyl", view.Lines[1].Name)
	assert.True(t, view.Total.Equal(decimal.RequireFromString("700.50")), "total %s", view.Total)
	assert.Equal(t, 2, view.ItemCount)

	f.inv.meds[0].Price = decimal.NewFromInt(9999)
	_, err = f.svc.RefreshInventory(context.Background(), "tok")
	require.NoError(t, err)
	view, err = f.svc.AddToCart("A")
	require.NoError(t, err)
	assert.True(t, view.Lines[0].UnitPrice.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, 2, view.Lines[0].Quantity)
}

func TestAddToCartStockRules(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddToCart("C")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, "This medication is out of stock.", typed.Message())

	for i := 0; i < 3; i++ {
		_, err = f.svc.AddToCart("A")
		require.NoError(t, err)
	}
	_, err = f.svc.AddToCart("A")
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "Only 3 in stock. You cannot add more.", typed.Message())
	assert.Equal(t, 3, f.svc.Cart().ItemCount)

	_, err = f.svc.AddToCart("ghost")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
	_, err = f.svc.AddToCart("  ")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestIncreaseAndDecrease(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.AddToCart("A")
	require.NoError(t, err)

	view, err := f.svc.Increase("A")
	require.NoError(t, err)
	assert.Equal(t, 2, view.Lines[0].Quantity)
	view, err = f.svc.Increase("A")
	require.NoError(t, err)
	assert.Equal(t, 3, view.Lines[0].Quantity)

	_, err = f.svc.Increase("A")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	view, err = f.svc.Increase("unknown")
	require.NoError(t, err)
	assert.Equal(t, 3, view.ItemCount)

	view = f.svc.Decrease("A")
	assert.Equal(t, 2, view.Lines[0].Quantity)
	f.svc.Decrease("A")
	view = f.svc.Decrease("A")
	assert.Empty(t, view.Lines)
	assert.NotNil(t, view.Lines)
	assert.True(t, view.Total.IsZero())
}

func TestRemoveAndClear(t *testing.T) {
	f := newFixture(t)
	_, _ = f.svc.AddToCart("A")
	_, _ = f.svc.AddToCart("2")

	view := f.svc.Remove("A")
	require.Len(t, view.Lines, 1)
	assert.Equal(t, view, f.svc.Remove("A"))

	view = f.svc.Clear()
	assert.Empty(t, view.Lines)
	assert.Equal(t, 0, view.ItemCount)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Checkout(context.Background(), "tok", CheckoutRequest{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "Add items to the cart before checkout.", typed.Message())
	assert.Empty(t, f.sales.recorded)
}

func TestCheckoutRejectsLinesBeyondSnapshotStock(t *testing.T) {
	f := newFixture(t)
	_, _ = f.svc.AddToCart("A")
	_, _ = f.svc.AddToCart("A")

	f.inv.meds[0].Stock = 1
	_, err := f.svc.RefreshInventory(context.Background(), "tok")
	require.NoError(t, err)

	_, err = f.svc.Checkout(context.Background(), "tok", CheckoutRequest{PaymentMethod: "Cash"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, "Not enough stock for Amoxicillin. Please adjust quantity.", typed.Message())
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	violations, ok := details["violations"].([]checkout.StockViolationDetail)
	require.True(t, ok)
	require.Len(t, violations, 1)
	assert.Equal(t, checkout.ReasonExceedsStock, violations[0].Reason)

	assert.Empty(t, f.sales.recorded, "no backend call")
	assert.Equal(t, 2, f.svc.Cart().ItemCount)
	assert.Equal(t, 1.0, attempts(t, f, metrics.CheckoutRejected))
}

func TestCheckoutRejectsLinesMissingFromSnapshot(t *testing.T) {
	f := newFixture(t)
	_, _ = f.svc.AddToCart("2")

	f.inv.meds = f.inv.meds[:1]
	_, err := f.svc.RefreshInventory(context.Background(), "tok")
	require.NoError(t, err)

	_, err = f.svc.Checkout(context.Background(), "tok", CheckoutRequest{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "Not enough stock for Bisacodyl. Please adjust quantity.", typed.Message())
	assert.Empty(t, f.sales.recorded)
}

func TestCheckoutRejectsUnknownPaymentMethod(t *testing.T) {
	f := newFixture(t)
	_, _ = f.svc.AddToCart("A")

	_, err := f.svc.Checkout(context.Background(), "tok", CheckoutRequest{PaymentMethod: "Barter"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	assert.Empty(t, f.sales.recorded)
}

func TestCheckoutSuccessClearsCartAndRotatesKey(t *testing.T) {
	f := newFixture(t)
	_, _ = f.svc.AddToCart("A")
	_, _ = f.svc.AddToCart("2")
	_, _ = f.svc.Increase("2")

	res, err := f.svc.Checkout(context.Background(), "tok", CheckoutRequest{PaymentMethod: "card"})
	require.NoError(t, err)
	assert.Equal(t, "Card", res.PaymentMethod)
	assert.Equal(t, "The sale has been recorded. Payment: Card", res.Message)
	assert.True(t, res.Total.Equal(decimal.NewFromInt(901)), "total %s", res.Total)
	assert.Equal(t, 3, res.ItemCount)
	assert.Empty(t, res.Cart.Lines)
	assert.True(t, f.handle.Snapshot().IsEmpty())

	require.Len(t, f.sales.recorded, 1)
	sent := f.sales.recorded[0]
	assert.Equal(t, "tok", sent.token)
	assert.NotEmpty(t, sent.key)
	assert.Equal(t, "901", sent.body.Total.String())
	assert.Equal(t, "Card", sent.body.PaymentMethod)
	require.Len(t, sent.body.Items, 2)
	assert.Equal(t, saleItemBody{MedicationID: "2", Name: "Bisacodyl", Price: "200.5", Quantity: 2}, sent.body.Items[1])

	assert.NotEqual(t, sent.key, f.svc.currentSaleKey())
	assert.Equal(t, 1.0, attempts(t, f, metrics.CheckoutSucceeded))
}

func TestCheckoutFailureKeepsCartAndKey(t *testing.T) {
	f := newFixture(t)
	_, _ = f.svc.AddToCart("A")
	f.sales.recordErr = pkgerrors.New(pkgerrors.CodeDependency, "pharmacy backend unreachable")

	_, err := f.svc.Checkout(context.Background(), "tok", CheckoutRequest{})
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeDependency))
	assert.Equal(t, 1, f.svc.Cart().ItemCount)

	f.sales.recordErr = nil
	_, err = f.svc.Checkout(context.Background(), "tok", CheckoutRequest{})
	require.NoError(t, err)

	require.Len(t, f.sales.recorded, 2)
	assert.Equal(t, f.sales.recorded[0].key, f.sales.recorded[1].key, "retry reuses the idempotency key")
	assert.Equal(t, "Cash", f.sales.recorded[1].body.PaymentMethod)
	assert.Equal(t, 1.0, attempts(t, f, metrics.CheckoutFailed))
}

func TestChangingCartAfterFailureStartsNewSale(t *testing.T) {
	f := newFixture(t)
	_, _ = f.svc.AddToCart("A")
	f.sales.recordErr = errors.New("boom")

	_, err := f.svc.Checkout(context.Background(), "tok", CheckoutRequest{})
	require.Error(t, err)
	first := f.sales.recorded[0].key

	_, _ = f.svc.AddToCart("2")
	assert.NotEqual(t, first, f.svc.currentSaleKey())

	before := f.svc.currentSaleKey()
	f.svc.Remove("missing")
	assert.Equal(t, before, f.svc.currentSaleKey(), "no-op changes keep the key")
}

func TestRetryWithAnotherPaymentMethodStartsNewSale(t *testing.T) {
	f := newFixture(t)
	_, _ = f.svc.AddToCart("A")
	f.sales.recordErr = errors.New("timeout")

	_, err := f.svc.Checkout(context.Background(), "tok", CheckoutRequest{PaymentMethod: "Cash"})
	require.Error(t, err)
	_, err = f.svc.Checkout(context.Background(), "tok", CheckoutRequest{PaymentMethod: "Card"})
	require.Error(t, err)
	f.sales.recordErr = nil
	_, err = f.svc.Checkout(context.Background(), "tok", CheckoutRequest{PaymentMethod: "card"})
	require.NoError(t, err)

	require.Len(t, f.sales.recorded, 3)
	assert.NotEqual(t, f.sales.recorded[0].key, f.sales.recorded[1].key, "a different body needs a different key")
	assert.Equal(t, f.sales.recorded[1].key, f.sales.recorded[2].key)
	assert.Equal(t, "Card", f.sales.recorded[2].body.PaymentMethod)
}

type blockingSales struct {
	fakeSales
	started chan struct{}
	release chan struct{}
}

func (b *blockingSales) RecordSale(ctx context.Context, token, key string, body saleBody) error {
	close(b.started)
	<-b.release
	return b.fakeSales.RecordSale(ctx, token, key, body)
}

func TestCheckoutKeepsLinesAddedWhileSaleInFlight(t *testing.T) {
	sales := &blockingSales{started: make(chan struct{}), release: make(chan struct{})}
	handle := cart.NewHandle()
	svc, err := NewService(ServiceParams{Inventory: stockedInventory(), Sales: sales, Cart: handle})
	require.NoError(t, err)
	_, err = svc.RefreshInventory(context.Background(), "tok")
	require.NoError(t, err)
	_, err = svc.AddToCart("A")
	require.NoError(t, err)
	_, err = svc.Increase("A")
	require.NoError(t, err)

	type outcome struct {
		res *CheckoutResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := svc.Checkout(context.Background(), "tok", CheckoutRequest{})
		done <- outcome{res: res, err: err}
	}()

	<-sales.started
	_, err = svc.AddToCart("2")
	require.NoError(t, err)
	_, err = svc.Increase("A")
	require.NoError(t, err)
	close(sales.release)

	out := <-done
	require.NoError(t, out.err)
	assert.Equal(t, 2, out.res.ItemCount)

	require.Len(t, sales.recorded, 1)
	require.Len(t, sales.recorded[0].body.Items, 1)
	assert.Equal(t, 2, sales.recorded[0].body.Items[0].Quantity)

	lines := handle.Snapshot().Lines
	require.Len(t, lines, 2)
	assert.Equal(t, cart.MedicationID("A"), lines[0].MedicationID)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Equal(t, cart.MedicationID("2"), lines[1].MedicationID)
	assert.Equal(t, 1, lines[1].Quantity)
}

func TestRefreshInventoryError(t *testing.T) {
	f := newFixture(t)
	f.inv.err = pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized")

	_, err := f.svc.RefreshInventory(context.Background(), "tok")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeUnauthorized))
	assert.Len(t, f.svc.Medications(""), 3, "previous snapshot kept")
}

func TestSalesHistory(t *testing.T) {
	f := newFixture(t)
	f.svc.now = func() time.Time { return time.Date(2026, 3, 4, 23, 30, 0, 0, time.FixedZone("WAT", 3600)) }
	f.sales.sales = []Sale{
		{ID: "s1", Total: decimal.NewFromInt(1500), PaymentMethod: "Cash"},
		{ID: "s2", Total: decimal.RequireFromString("200.25"), PaymentMethod: "Card", Items: []SaleItem{{Name: "B", Quantity: 1}}},
	}

	history, err := f.svc.SalesHistory(context.Background(), "tok", "")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-04", history.Date)
	assert.Equal(t, 2, history.Count)
	assert.True(t, history.Total.Equal(decimal.RequireFromString("1700.25")))
	assert.NotNil(t, history.Sales[0].Items)

	_, err = f.svc.SalesHistory(context.Background(), "tok", "2026-02-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-04", "2026-02-01"}, f.sales.dates)

	_, err = f.svc.SalesHistory(context.Background(), "tok", "01/02/2026")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	assert.Len(t, f.sales.dates, 2)
}

func attempts(t *testing.T, f *fixture, outcome string) float64 {
	t.Helper()
	families, err := f.registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "pos_checkout_attempts_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
