package repository

import (
	"testing"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/boletos-tracker/constants"
	"github.com/joseph-ayodele/boletos-tracker/internal/entity"
)

func TestBillQueries_Postgres(t *testing.T) {
	b := entsql.Dialect(dialect.Postgres)
	paid := date(t, "2025-03-05")
	anexo := "boleto.pdf"

	testCases := []struct {
		name         string
		build        func() (string, []any)
		expectedSQL  []string
		expectedArgs []any
	}{
		{
			name: "insert",
			build: func() (string, []any) {
				in := pendingBill(t, "Acme", "1234.5", "2025-03-01")
				in.Attachment = &anexo
				return insertBillQuery(b, in)
			},
			expectedSQL: []string{
				`INSERT INTO "boletos"`,
				`"fornecedor", "valor", "vencimento", "status", "anexo", "dataPagamento"`,
				`$1, $2, $3, $4, $5, $6`,
				`RETURNING "id"`,
			},
			expectedArgs: []any{"Acme", "1234.50", "2025-03-01", "Pendente", "boleto.pdf", nil},
		},
		{
			name:         "select_all",
			build:        func() (string, []any) { return selectBillsQuery(b, nil) },
			expectedSQL:  []string{`FROM "boletos"`, `"dataPagamento"`, `ORDER BY`, `"vencimento"`},
			expectedArgs: nil,
		},
		{
			name:         "select_by_id",
			build:        func() (string, []any) { return selectBillsQuery(b, entsql.EQ(colID, int64(7))) },
			expectedSQL:  []string{`FROM "boletos"`, `WHERE "id" = $1`},
			expectedArgs: []any{int64(7)},
		},
		{
			name: "update_status_clears_payment_date",
			build: func() (string, []any) {
				return updateStatusQuery(b, 7, constants.BillStatusPending, nil)
			},
			expectedSQL:  []string{`UPDATE "boletos" SET`, `"status" = $1`, `"dataPagamento" = NULL`, `WHERE "id" = $2`},
			expectedArgs: []any{"Pendente", int64(7)},
		},
		{
			name: "update_status_sets_payment_date",
			build: func() (string, []any) {
				return updateStatusQuery(b, 7, constants.BillStatusPaid, &paid)
			},
			expectedSQL:  []string{`"status" = $1`, `"dataPagamento" = $2`, `WHERE "id" = $3`},
			expectedArgs: []any{"Pago", "2025-03-05", int64(7)},
		},
		{
			name:         "mark_paid_if_pending",
			build:        func() (string, []any) { return markPaidQuery(b, 7, paid) },
			expectedSQL:  []string{`UPDATE "boletos" SET`, `"dataPagamento" = $2`, `"id" = $3`, `"status" = $4`},
			expectedArgs: []any{"Pago", "2025-03-05", int64(7), "Pendente"},
		},
		{
			name:         "delete",
			build:        func() (string, []any) { return deleteBillQuery(b, 7) },
			expectedSQL:  []string{`DELETE FROM "boletos"`, `WHERE "id" = $1`},
			expectedArgs: []any{int64(7)},
		},
		{
			name:        "count",
			build:       func() (string, []any) { return countQuery(b) },
			expectedSQL: []string{`COUNT(*)`, `FROM "boletos"`, `GROUP BY "status"`},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			query, args := tc.build()
			for _, fragment := range tc.expectedSQL {
				assert.Contains(t, query, fragment)
			}
			assert.NotContains(t, query, "?")
			assert.NotContains(t, query, "`")
			assert.Equal(t, len(tc.expectedArgs), len(args))
			if len(tc.expectedArgs) > 0 {
				assert.Equal(t, tc.expectedArgs, args)
			}
		})
	}
}

func TestBillQueries_SQLite(t *testing.T) {
	b := entsql.Dialect(dialect.SQLite)

	query, args := markPaidQuery(b, 7, date(t, "2025-03-05"))
	assert.Contains(t, query, "`dataPagamento` = ?")
	assert.NotContains(t, query, "$1")
	assert.Equal(t, []any{"Pago", "2025-03-05", int64(7), "Pendente"}, args)

	query, _ = insertBillQuery(b, entity.BillInput{Supplier: "Acme", Status: constants.BillStatusPending})
	assert.Contains(t, query, "INSERT INTO `boletos`")
	assert.Contains(t, query, "RETURNING `id`")
}
