package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	domorder "example.com/cleantec-orders/app/internal/domain/order"
)

const (
	numberAttempts = 3
	notifyTimeout  = 30 * time.Second
)

// Notifier is told about every persisted order. Failures are logged and
// never undo the order.
type Notifier interface {
	OrderCreated(ctx context.Context, o *domorder.Order) error
}

type Service struct {
	repo      domorder.Repository
	notifiers []Notifier
	logger    *zap.Logger
	now       func() time.Time
	wg        sync.WaitGroup
}

func NewService(repo domorder.Repository, logger *zap.Logger, notifiers ...Notifier) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		notifiers: notifiers,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateOrder validates the payload, assigns an order number and stores
// the order with its items atomically.
func (s *Service) CreateOrder(ctx context.Context, payload domorder.Payload) (*domorder.Receipt, error) {
	o, err := s.Create(ctx, payload)
	if err != nil {
		return nil, err
	}
	return &domorder.Receipt{OrderID: o.ID, OrderNumber: o.OrderNumber}, nil
}

func (s *Service) Create(ctx context.Context, payload domorder.Payload) (*domorder.Order, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	var (
		created *domorder.Order
		err     error
	)
	for attempt := 1; attempt <= numberAttempts; attempt++ {
		created, err = s.repo.Create(ctx, payload.Order(domorder.NewNumber(s.now())))
		if !errors.Is(err, domorder.ErrOrderNumberConflict) {
			break
		}
		s.logger.Warn("order number collision, retrying", zap.Int("attempt", attempt))
	}
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info("order created",
		zap.Int64("order_id", created.ID),
		zap.String("order_number", created.OrderNumber),
		zap.String("client_number", created.ClientNumber),
		zap.Float64("total", created.Total),
	)
	s.notify(ctx, created)
	return created, nil
}

func (s *Service) notify(ctx context.Context, o *domorder.Order) {
	if len(s.notifiers) == 0 {
		return
	}
	snapshot := *o
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		for _, n := range s.notifiers {
			if err := n.OrderCreated(nctx, &snapshot); err != nil {
				s.logger.Error("order notification failed",
					zap.String("order_number", snapshot.OrderNumber),
					zap.Error(err),
				)
			}
		}
	}()
}

// Wait blocks until pending notifications have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) List(ctx context.Context, filter domorder.ListFilter) ([]*domorder.Order, error) {
	filter.ClientNumber = strings.TrimSpace(filter.ClientNumber)
	return s.repo.List(ctx, filter)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domorder.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*domorder.Order, error) {
	return s.repo.GetByNumber(ctx, strings.TrimSpace(number))
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status domorder.Status) (*domorder.Order, error) {
	if !status.IsValid() {
		return nil, domorder.ErrInvalidStatus
	}
	return s.repo.UpdateStatus(ctx, id, status)
}
