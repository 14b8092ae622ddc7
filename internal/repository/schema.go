package repository

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
)

const (
	billsTable = "boletos"

	colID          = "id"
	colSupplier    = "fornecedor"
	colAmount      = "valor"
	colDueDate     = "vencimento"
	colStatus      = "status"
	colAttachment  = "anexo"
	colPaymentDate = "dataPagamento"
)

var billColumns = []string{colID, colSupplier, colAmount, colDueDate, colStatus, colAttachment, colPaymentDate}

// Amounts are TEXT on SQLite so they never pass through REAL.
// AUTOINCREMENT keeps ids from being reused after a delete.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS boletos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		fornecedor TEXT NOT NULL CHECK (length(trim(fornecedor)) > 0),
		valor TEXT NOT NULL,
		vencimento TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Pendente' CHECK (status IN ('Pendente', 'Pago')),
		anexo TEXT,
		dataPagamento TEXT,
		CHECK ((status = 'Pago') = (dataPagamento IS NOT NULL))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_boletos_vencimento ON boletos (vencimento, id)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS boletos (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		fornecedor TEXT NOT NULL CHECK (length(btrim(fornecedor)) > 0),
		valor NUMERIC(14, 2) NOT NULL,
		vencimento DATE NOT NULL,
		status TEXT NOT NULL DEFAULT 'Pendente' CHECK (status IN ('Pendente', 'Pago')),
		anexo TEXT,
		"dataPagamento" DATE,
		CHECK ((status = 'Pago') = ("dataPagamento" IS NOT NULL))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_boletos_vencimento ON boletos (vencimento, id)`,
}

func schemaFor(d string) ([]string, error) {
	switch d {
	case dialect.SQLite:
		return sqliteSchema, nil
	case dialect.Postgres:
		return postgresSchema, nil
	default:
		return nil, fmt.Errorf("no schema for dialect %q", d)
	}
}

// Initialize creates the boletos table and its index when missing. Safe on every start.
func (s *billStore) Initialize(ctx context.Context) error {
	stmts, err := schemaFor(s.drv.Dialect())
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if err := s.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			s.logger.Error("failed to apply schema", "dialect", s.drv.Dialect(), "error", err)
			return classify("initialize", err)
		}
	}
	s.logger.Info("schema ready", "table", billsTable, "dialect", s.drv.Dialect())
	return nil
}
