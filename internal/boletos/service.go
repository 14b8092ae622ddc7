package boletos

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/boletos-tracker/constants"
	"github.com/joseph-ayodele/boletos-tracker/internal/common"
	"github.com/joseph-ayodele/boletos-tracker/internal/entity"
	"github.com/joseph-ayodele/boletos-tracker/internal/repository"
	"github.com/joseph-ayodele/boletos-tracker/internal/utils"
)

//go:generate mockgen -source=service.go -destination=../mocks/boletos/service_mock.go -package=boletos

// Service implements the bill lifecycle on top of a repository.BillStore.
type Service interface {
	ListBills(ctx context.Context) (*BillList, error)
	GetBill(ctx context.Context, id int64) (*entity.Bill, error)
	CreateBill(ctx context.Context, in CreateBillInput) (int64, error)
	MarkPaid(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, id int64, in UpdateStatusInput) error
	RemoveBill(ctx context.Context, id int64) error
}

// BillList holds every bill in due-date order plus the per-status partitions.
type BillList struct {
	All     []*entity.Bill
	Pending []*entity.Bill
	Paid    []*entity.Bill
}

// CreateBillInput is the caller-supplied data for a new bill. Amount keeps the
// raw text so it can be parsed exactly.
type CreateBillInput struct {
	Supplier   string  `json:"fornecedor" validate:"required,max=255"`
	Amount     string  `json:"valor" validate:"required"`
	DueDate    string  `json:"vencimento" validate:"required"`
	Attachment *string `json:"anexo" validate:"omitempty,max=255"`
	// Status is accepted for compatibility and ignored.
	Status string `json:"status"`
}

// UpdateStatusInput is the body of a status change. PaymentDate defaults to today.
type UpdateStatusInput struct {
	Status      string  `json:"status" validate:"required"`
	PaymentDate *string `json:"dataPagamento"`
}

type service struct {
	store      repository.BillStore
	logger     *slog.Logger
	now        func() time.Time
	permissive bool
}

type Option func(*service)

// WithClock overrides the clock used to stamp payment dates.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithPermissiveTransitions accepts any stored status on update, the way the
// first version of the API did. Pendente clears the payment date.
func WithPermissiveTransitions() Option {
	return func(s *service) { s.permissive = true }
}

func NewService(store repository.BillStore, logger *slog.Logger, opts ...Option) Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) ListBills(ctx context.Context) (*BillList, error) {
	bills, err := s.store.SelectAll(ctx)
	if err != nil {
		s.logger.Error("failed to list bills", "error", err)
		return nil, err
	}

	list := &BillList{
		All:     bills,
		Pending: make([]*entity.Bill, 0),
		Paid:    make([]*entity.Bill, 0),
	}
	for _, b := range bills {
		if b.IsPaid() {
			list.Paid = append(list.Paid, b)
		} else {
			list.Pending = append(list.Pending, b)
		}
	}
	s.logger.Debug("bills listed", "pending", len(list.Pending), "paid", len(list.Paid))
	return list, nil
}

func (s *service) GetBill(ctx context.Context, id int64) (*entity.Bill, error) {
	return s.store.SelectByID(ctx, id)
}

func (s *service) CreateBill(ctx context.Context, in CreateBillInput) (int64, error) {
	in.Supplier = strings.TrimSpace(in.Supplier)
	in.Amount = strings.TrimSpace(in.Amount)
	in.DueDate = strings.TrimSpace(in.DueDate)
	if err := common.ValidateStruct(in); err != nil {
		return 0, err
	}

	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return 0, err
	}
	dueDate, err := utils.ParseYMD(in.DueDate)
	if err != nil {
		return 0, common.NewValidationError("vencimento", in.DueDate, "must be a date in YYYY-MM-DD format")
	}

	var attachment *string
	if in.Attachment != nil {
		if a := strings.TrimSpace(*in.Attachment); a != "" {
			attachment = &a
		}
	}

	id, err := s.store.Insert(ctx, entity.BillInput{
		Supplier:   in.Supplier,
		Amount:     amount,
		DueDate:    dueDate,
		Status:     constants.BillStatusPending,
		Attachment: attachment,
	})
	if err != nil {
		s.logger.Error("failed to create bill", "supplier", in.Supplier, "error", err)
		return 0, err
	}

	s.logger.Info("bill created", "bill_id", id, "supplier", in.Supplier, "amount", amount.StringFixed(2), "due_date", in.DueDate)
	return id, nil
}

func (s *service) MarkPaid(ctx context.Context, id int64) error {
	return s.UpdateStatus(ctx, id, UpdateStatusInput{Status: string(constants.BillStatusPaid)})
}

func (s *service) UpdateStatus(ctx context.Context, id int64, in UpdateStatusInput) error {
	if err := common.ValidateStruct(in); err != nil {
		return err
	}
	target, ok := constants.ParseBillStatus(in.Status)
	if !ok {
		return common.NewValidationError("status", in.Status, "must be Pendente or Pago")
	}

	paidOn := utils.DateOnly(s.now())
	if in.PaymentDate != nil && strings.TrimSpace(*in.PaymentDate) != "" {
		d, err := utils.ParseYMD(strings.TrimSpace(*in.PaymentDate))
		if err != nil {
			return common.NewValidationError("dataPagamento", *in.PaymentDate, "must be a date in YYYY-MM-DD format")
		}
		paidOn = d
	}

	if s.permissive {
		return s.setStatus(ctx, id, target, paidOn)
	}

	if target != constants.BillStatusPaid {
		current, err := s.store.SelectByID(ctx, id)
		if err != nil {
			return err
		}
		return common.TransitionError(string(current.Status), string(target))
	}

	n, err := s.store.MarkPaidIfPending(ctx, id, paidOn)
	if err != nil {
		s.logger.Error("failed to mark bill paid", "bill_id", id, "error", err)
		return err
	}
	if n == 0 {
		// either missing or already paid
		current, err := s.store.SelectByID(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				s.logger.Warn("bill not found", "bill_id", id)
			}
			return err
		}
		s.logger.Warn("rejected status transition", "bill_id", id, "from", current.Status, "to", target)
		return common.TransitionError(string(current.Status), string(target))
	}

	s.logger.Info("bill marked paid", "bill_id", id, "payment_date", utils.FormatYMD(paidOn))
	return nil
}

func (s *service) setStatus(ctx context.Context, id int64, status constants.BillStatus, paidOn time.Time) error {
	var paymentDate *time.Time
	if status == constants.BillStatusPaid {
		paymentDate = &paidOn
	}
	n, err := s.store.UpdateStatus(ctx, id, status, paymentDate)
	if err != nil {
		s.logger.Error("failed to update bill status", "bill_id", id, "error", err)
		return err
	}
	if n == 0 {
		s.logger.Warn("bill not found", "bill_id", id)
		return common.NotFoundError("bill", id)
	}
	s.logger.Info("bill status updated", "bill_id", id, "status", status)
	return nil
}

func (s *service) RemoveBill(ctx context.Context, id int64) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete bill", "bill_id", id, "error", err)
		return err
	}
	if n == 0 {
		s.logger.Warn("bill not found", "bill_id", id)
		return common.NotFoundError("bill", id)
	}
	s.logger.Info("bill removed", "bill_id", id)
	return nil
}
