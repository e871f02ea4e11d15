package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domcart "example.com/cleantec-orders/app/internal/domain/cart"
	domcheckout "example.com/cleantec-orders/app/internal/domain/checkout"
	domcustomer "example.com/cleantec-orders/app/internal/domain/customer"
	domorder "example.com/cleantec-orders/app/internal/domain/order"
	domproduct "example.com/cleantec-orders/app/internal/domain/product"
)

// ClientValidator resolves a client number to a customer record. A miss
// must be reported as domcustomer.ErrCustomerNotFound.
type ClientValidator interface {
	Lookup(ctx context.Context, clientNumber string) (*domcustomer.Customer, error)
}

// OrderSubmitter persists an order payload and returns its identifiers.
type OrderSubmitter interface {
	CreateOrder(ctx context.Context, payload domorder.Payload) (*domorder.Receipt, error)
}

// Observer is notified of step changes and submission outcomes.
type Observer interface {
	StepChanged(from, to domcheckout.Step)
	OrderSubmitted(ok bool)
}

type nopObserver struct{}

func (nopObserver) StepChanged(domcheckout.Step, domcheckout.Step) {}
func (nopObserver) OrderSubmitted(bool)                            {}

// DeliveryLeadTime is added to the submission time to give the estimated
// delivery date shown on the confirmation summary.
const DeliveryLeadTime = 48 * time.Hour

type Options struct {
	// RequestTimeout bounds client lookups and order submissions. Zero
	// leaves them bounded only by the caller's context.
	RequestTimeout time.Duration
	// ClearDelay is how long the submitted cart and client stay visible
	// before they are discarded. Zero clears only on Complete.
	ClearDelay time.Duration
	Observer   Observer
	Now        func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Observer == nil {
		o.Observer = nopObserver{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Wizard is one checkout session. It owns the cart and the validated
// client; every method is safe for concurrent use.
type Wizard struct {
	mu sync.Mutex

	step    domcheckout.Step
	cart    *domcart.Cart
	client  *domcustomer.Customer
	errMsg  string
	receipt *domorder.Receipt
	// submitted, submittedItems and deliveryBy feed the confirmation
	// summary after the cart itself has been cleared.
	submitted      *domorder.Totals
	submittedItems int64
	deliveryBy     time.Time
	clearAt        time.Time

	validating bool
	submitting bool
	lastActive time.Time

	validator ClientValidator
	submitter OrderSubmitter
	opts      Options
}

func NewWizard(validator ClientValidator, submitter OrderSubmitter, opts Options) *Wizard {
	opts = opts.withDefaults()
	return &Wizard{
		step:       domcheckout.StepCart,
		cart:       domcart.New(),
		validator:  validator,
		submitter:  submitter,
		opts:       opts,
		lastActive: opts.Now(),
	}
}

func (w *Wizard) AddItem(p domproduct.Product) error {
	return w.mutateCart(domcart.Action{Type: domcart.ActionAddItem, Product: p})
}

func (w *Wizard) UpdateQuantity(productID, quantity int64) error {
	return w.mutateCart(domcart.Action{Type: domcart.ActionUpdateQuantity, ProductID: productID, Quantity: quantity})
}

func (w *Wizard) RemoveItem(productID int64) error {
	return w.mutateCart(domcart.Action{Type: domcart.ActionRemoveItem, ProductID: productID})
}

func (w *Wizard) ClearCart() error {
	return w.mutateCart(domcart.Action{Type: domcart.ActionClearCart})
}

func (w *Wizard) mutateCart(a domcart.Action) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touch()

	if w.step == domcheckout.StepConfirmation {
		return domcheckout.ErrCartLocked
	}
	if w.validating {
		return domcheckout.ErrRequestInFlight
	}
	if err := w.cart.Apply(a); err != nil {
		return err
	}
	// Review and validation need something to order.
	if w.cart.IsEmpty() && w.step != domcheckout.StepCart {
		w.moveTo(domcheckout.StepCart)
	}
	return nil
}

// Proceed advances cart → review → validation.
func (w *Wizard) Proceed() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touch()

	return w.fire(domcheckout.EventProceed)
}

// Back steps validation → review → cart. It is refused while a lookup
// is outstanding.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touch()

	if w.validating {
		return domcheckout.ErrRequestInFlight
	}
	return w.fire(domcheckout.EventBack)
}

// ValidateClient looks the trimmed client number up and, on a hit, holds
// the customer and moves to confirmation. Recoverable failures leave the
// wizard in validation with a user-facing message.
func (w *Wizard) ValidateClient(ctx context.Context, raw string) error {
	w.mu.Lock()
	w.touch()
	if w.step != domcheckout.StepValidation {
		w.mu.Unlock()
		return domcheckout.ErrInvalidTransition
	}
	if w.validating {
		w.mu.Unlock()
		return domcheckout.ErrRequestInFlight
	}
	number, err := domcustomer.NormalizeClientNumber(raw)
	if err != nil {
		w.errMsg = domcheckout.MsgEnterClientNumber
		w.mu.Unlock()
		return err
	}
	w.validating = true
	w.errMsg = ""
	w.mu.Unlock()

	callCtx, cancel := w.requestContext(ctx)
	client, lookupErr := w.validator.Lookup(callCtx, number)
	cancel()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.validating = false
	w.lastActive = w.opts.Now()

	switch {
	case errors.Is(lookupErr, domcustomer.ErrCustomerNotFound):
		w.errMsg = domcheckout.MsgClientNotFound
		return lookupErr
	case lookupErr != nil:
		w.errMsg = domcheckout.MsgLookupFailed
		return fmt.Errorf("%w: %w", domcheckout.ErrClientLookupFailed, lookupErr)
	case client == nil:
		w.errMsg = domcheckout.MsgClientNotFound
		return domcustomer.ErrCustomerNotFound
	}

	w.client = client
	return w.fire(domcheckout.EventClientValidated)
}

// Submit sends the order for the held client and current cart. On failure
// the cart and client are kept so the user can retry.
func (w *Wizard) Submit(ctx context.Context, notes string) (*domorder.Receipt, error) {
	w.mu.Lock()
	w.touch()
	if w.step != domcheckout.StepConfirmation {
		w.mu.Unlock()
		return nil, domcheckout.ErrInvalidTransition
	}
	if w.receipt != nil {
		w.mu.Unlock()
		return nil, domcheckout.ErrAlreadySubmitted
	}
	if w.client == nil {
		w.mu.Unlock()
		return nil, domcheckout.ErrClientNotValidated
	}
	if w.submitting {
		w.mu.Unlock()
		return nil, domcheckout.ErrRequestInFlight
	}
	if w.cart.IsEmpty() {
		w.mu.Unlock()
		return nil, domcheckout.ErrEmptyCart
	}
	payload := domorder.NewPayload(w.cart, w.client, notes)
	totals := domorder.ComputeTotals(w.cart.Total())
	itemCount := w.cart.ItemCount()
	w.submitting = true
	w.errMsg = ""
	w.mu.Unlock()

	callCtx, cancel := w.requestContext(ctx)
	receipt, err := w.submitter.CreateOrder(callCtx, payload)
	cancel()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false
	w.lastActive = w.opts.Now()

	if err != nil {
		w.errMsg = domcheckout.MsgSubmissionFailed
		w.opts.Observer.OrderSubmitted(false)
		return nil, fmt.Errorf("%w: %w", domcheckout.ErrSubmissionFailed, err)
	}

	w.receipt = receipt
	w.submitted = &totals
	w.submittedItems = itemCount
	w.deliveryBy = w.opts.Now().Add(DeliveryLeadTime)
	if w.opts.ClearDelay > 0 {
		w.clearAt = w.opts.Now().Add(w.opts.ClearDelay)
	}
	w.opts.Observer.OrderSubmitted(true)
	return receipt, nil
}

// Complete ends a submitted checkout: the cart and client are discarded
// and the wizard returns to the cart step.
func (w *Wizard) Complete() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touch()

	if err := w.fire(domcheckout.EventComplete); err != nil {
		return err
	}
	w.reset()
	return nil
}

// State returns a read-only view of the session.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.settle()

	s := State{
		Step:       w.step,
		Items:      w.cart.Items(),
		ItemCount:  w.cart.ItemCount(),
		Totals:     domorder.ComputeTotals(w.cart.Total()),
		Error:      w.errMsg,
		Validating: w.validating,
		Submitting: w.submitting,
	}
	if w.client != nil {
		c := *w.client
		s.Client = &c
	}
	if w.receipt != nil {
		r := *w.receipt
		s.Receipt = &r
		s.SubmittedTotals = w.submitted
		s.SubmittedItemCount = w.submittedItems
		s.EstimatedDelivery = w.deliveryBy
	}
	return s
}

// Busy reports whether a client lookup or an order submission is
// outstanding.
func (w *Wizard) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.validating || w.submitting
}

// IdleSince reports when the wizard was last used.
func (w *Wizard) IdleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastActive
}

func (w *Wizard) fire(e domcheckout.Event) error {
	next, err := domcheckout.Transition(w.step, e, domcheckout.Guards{
		CartEmpty:       w.cart.IsEmpty(),
		ClientValidated: w.client != nil,
		OrderSubmitted:  w.receipt != nil,
	})
	if err != nil {
		return err
	}
	w.errMsg = ""
	w.moveTo(next)
	return nil
}

func (w *Wizard) moveTo(next domcheckout.Step) {
	if next == w.step {
		return
	}
	w.opts.Observer.StepChanged(w.step, next)
	w.step = next
}

func (w *Wizard) touch() {
	w.lastActive = w.opts.Now()
	w.settle()
}

// settle applies the delayed clear once its deadline has passed. The
// wizard stays on the confirmation step until Complete.
func (w *Wizard) settle() {
	if w.clearAt.IsZero() || w.opts.Now().Before(w.clearAt) {
		return
	}
	w.cart.Clear()
	w.client = nil
	w.clearAt = time.Time{}
}

func (w *Wizard) reset() {
	w.cart.Clear()
	w.client = nil
	w.receipt = nil
	w.submitted = nil
	w.submittedItems = 0
	w.deliveryBy = time.Time{}
	w.clearAt = time.Time{}
	w.errMsg = ""
}

func (w *Wizard) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if w.opts.RequestTimeout > 0 {
		return context.WithTimeout(ctx, w.opts.RequestTimeout)
	}
	return context.WithCancel(ctx)
}
