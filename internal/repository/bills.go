package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/boletos-tracker/constants"
	"github.com/joseph-ayodele/boletos-tracker/internal/common"
	"github.com/joseph-ayodele/boletos-tracker/internal/entity"
)

//go:generate mockgen -source=bills.go -destination=../mocks/repository/bill_store_mock.go -package=repository

// BillCounts is the number of stored bills per status.
type BillCounts struct {
	Pending int64
	Paid    int64
}

// BillStore is the engine-agnostic record store for boletos. Engine differences
// (placeholders, quoting, DDL, error codes) stay behind this interface.
type BillStore interface {
	Initialize(ctx context.Context) error
	Insert(ctx context.Context, in entity.BillInput) (int64, error)
	SelectAll(ctx context.Context) ([]*entity.Bill, error)
	SelectByID(ctx context.Context, id int64) (*entity.Bill, error)
	UpdateStatus(ctx context.Context, id int64, status constants.BillStatus, paymentDate *time.Time) (int64, error)
	MarkPaidIfPending(ctx context.Context, id int64, paymentDate time.Time) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	Count(ctx context.Context) (BillCounts, error)
	Ping(ctx context.Context) error
}

type billStore struct {
	drv    *entsql.Driver
	logger *slog.Logger
}

func NewBillStore(drv *entsql.Driver, logger *slog.Logger) BillStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &billStore{
		drv:    drv,
		logger: logger,
	}
}

func (s *billStore) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.drv.Dialect())
}

func (s *billStore) Insert(ctx context.Context, in entity.BillInput) (int64, error) {
	query, args := insertBillQuery(s.builder(), in)

	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		s.logger.Error("failed to insert bill", "supplier", in.Supplier, "error", err)
		return 0, classify("insert", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, classify("insert", err)
		}
		return 0, classify("insert", errors.New("no id returned"))
	}
	var id int64
	if err := rows.Scan(&id); err != nil {
		return 0, classify("insert", err)
	}
	if err := rows.Err(); err != nil {
		return 0, classify("insert", err)
	}
	s.logger.Debug("bill inserted", "bill_id", id)
	return id, nil
}

func (s *billStore) SelectAll(ctx context.Context) ([]*entity.Bill, error) {
	query, args := selectBillsQuery(s.builder(), nil)

	bills, err := s.query(ctx, query, args)
	if err != nil {
		s.logger.Error("failed to list bills", "error", err)
		return nil, classify("select", err)
	}
	return bills, nil
}

func (s *billStore) SelectByID(ctx context.Context, id int64) (*entity.Bill, error) {
	query, args := selectBillsQuery(s.builder(), entsql.EQ(colID, id))

	bills, err := s.query(ctx, query, args)
	if err != nil {
		s.logger.Error("failed to get bill", "bill_id", id, "error", err)
		return nil, classify("select", err)
	}
	if len(bills) == 0 {
		return nil, common.NotFoundError("bill", id)
	}
	return bills[0], nil
}

func (s *billStore) UpdateStatus(ctx context.Context, id int64, status constants.BillStatus, paymentDate *time.Time) (int64, error) {
	query, args := updateStatusQuery(s.builder(), id, status, paymentDate)
	return s.exec(ctx, "update", query, args)
}

func (s *billStore) MarkPaidIfPending(ctx context.Context, id int64, paymentDate time.Time) (int64, error) {
	query, args := markPaidQuery(s.builder(), id, paymentDate)
	return s.exec(ctx, "update", query, args)
}

func (s *billStore) Delete(ctx context.Context, id int64) (int64, error) {
	query, args := deleteBillQuery(s.builder(), id)
	return s.exec(ctx, "delete", query, args)
}

func (s *billStore) Count(ctx context.Context) (BillCounts, error) {
	query, args := countQuery(s.builder())

	var counts BillCounts
	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return counts, classify("count", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return counts, classify("count", err)
		}
		switch constants.BillStatus(status) {
		case constants.BillStatusPending:
			counts.Pending = n
		case constants.BillStatusPaid:
			counts.Paid = n
		}
	}
	return counts, classify("count", rows.Err())
}

func (s *billStore) Ping(ctx context.Context) error {
	if err := s.drv.DB().PingContext(ctx); err != nil {
		return classify("ping", err)
	}
	return nil
}

func (s *billStore) exec(ctx context.Context, op, query string, args []any) (int64, error) {
	var res sql.Result
	if err := s.drv.Exec(ctx, query, args, &res); err != nil {
		s.logger.Error("statement failed", "op", op, "error", err)
		return 0, classify(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, classify(op, err)
	}
	return n, nil
}

func (s *billStore) query(ctx context.Context, query string, args []any) ([]*entity.Bill, error) {
	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	bills := make([]*entity.Bill, 0)
	for rows.Next() {
		bill, err := scanBill(&rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bills, nil
}

// Statement builders take the dialect so both engines can be checked without a
// live connection.

func insertBillQuery(b *entsql.DialectBuilder, in entity.BillInput) (string, []any) {
	return b.Insert(billsTable).
		Columns(colSupplier, colAmount, colDueDate, colStatus, colAttachment, colPaymentDate).
		Values(in.Supplier, amountArg(in.Amount), dateArg(in.DueDate), string(in.Status), stringArg(in.Attachment), nullableDateArg(in.PaymentDate)).
		Returning(colID).
		Query()
}

// selectBillsQuery lists bills by due date then id. A nil where selects all.
func selectBillsQuery(b *entsql.DialectBuilder, where *entsql.Predicate) (string, []any) {
	sel := b.Select(billColumns...).From(b.Table(billsTable))
	if where != nil {
		sel.Where(where)
	}
	return sel.OrderBy(colDueDate, colID).Query()
}

func updateStatusQuery(b *entsql.DialectBuilder, id int64, status constants.BillStatus, paymentDate *time.Time) (string, []any) {
	u := b.Update(billsTable).Set(colStatus, string(status))
	if paymentDate != nil {
		u.Set(colPaymentDate, dateArg(*paymentDate))
	} else {
		u.SetNull(colPaymentDate)
	}
	return u.Where(entsql.EQ(colID, id)).Query()
}

func markPaidQuery(b *entsql.DialectBuilder, id int64, paymentDate time.Time) (string, []any) {
	return b.Update(billsTable).
		Set(colStatus, string(constants.BillStatusPaid)).
		Set(colPaymentDate, dateArg(paymentDate)).
		Where(entsql.And(
			entsql.EQ(colID, id),
			entsql.EQ(colStatus, string(constants.BillStatusPending)),
		)).
		Query()
}

func deleteBillQuery(b *entsql.DialectBuilder, id int64) (string, []any) {
	return b.Delete(billsTable).
		Where(entsql.EQ(colID, id)).
		Query()
}

func countQuery(b *entsql.DialectBuilder) (string, []any) {
	return b.Select(colStatus, entsql.Count("*")).
		From(b.Table(billsTable)).
		GroupBy(colStatus).
		Query()
}

func scanBill(rows *entsql.Rows) (*entity.Bill, error) {
	var (
		b          entity.Bill
		status     string
		attachment sql.NullString
		dueDate    dateValue
		paidOn     dateValue
	)
	if err := rows.Scan(&b.ID, &b.Supplier, &b.Amount, &dueDate, &status, &attachment, &paidOn); err != nil {
		return nil, fmt.Errorf("scan bill: %w", err)
	}
	if !dueDate.Valid {
		return nil, fmt.Errorf("scan bill %d: missing due date", b.ID)
	}
	b.DueDate = dueDate.Time
	b.Status = constants.BillStatus(status)
	if !b.Status.Valid() {
		return nil, fmt.Errorf("scan bill %d: unknown status %q", b.ID, status)
	}
	if attachment.Valid {
		b.Attachment = &attachment.String
	}
	if paidOn.Valid {
		t := paidOn.Time
		b.PaymentDate = &t
	}
	return &b, nil
}

func amountArg(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func dateArg(t time.Time) string {
	return t.Format(entity.DateLayout)
}

func nullableDateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return dateArg(*t)
}

func stringArg(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
