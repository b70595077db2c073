package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const balanceColumns = "id, debtor, creditor, amount, updated_at"

type balances struct {
	q         querier
	forUpdate bool
}

// WithinTx on a transactional view joins the transaction.
func (b *balances) WithinTx(ctx context.Context, fn func(ctx context.Context, tx storage.BalanceStore) error) error {
	return fn(ctx, b)
}

func (b *balances) FindBalance(ctx context.Context, debtor, creditor string) (*models.PairwiseBalance, error) {
	row := b.q.QueryRowContext(ctx,
		"SELECT "+balanceColumns+" FROM balances WHERE debtor = $1 AND creditor = $2"+b.lockClause(),
		debtor, creditor,
	)
	balance, err := scanBalance(row)
	if err != nil {
		return nil, fmt.Errorf("failed to find balance: %w", err)
	}
	return balance, nil
}

func (b *balances) FindPairBalance(ctx context.Context, a, c string) (*models.PairwiseBalance, error) {
	row := b.q.QueryRowContext(ctx,
		"SELECT "+balanceColumns+` FROM balances
		 WHERE LEAST(debtor, creditor) = LEAST($1::text, $2::text)
		   AND GREATEST(debtor, creditor) = GREATEST($1::text, $2::text)`+b.lockClause(),
		a, c,
	)
	balance, err := scanBalance(row)
	if err != nil {
		return nil, fmt.Errorf("failed to find pair balance: %w", err)
	}
	return balance, nil
}

func (b *balances) CreateBalance(ctx context.Context, balance *models.PairwiseBalance) error {
	if balance.ID == "" {
		balance.ID = uuid.New().String()
	}
	if balance.UpdatedAt == 0 {
		balance.UpdatedAt = time.Now().Unix()
	}
	_, err := b.q.ExecContext(ctx,
		"INSERT INTO balances ("+balanceColumns+") VALUES ($1, $2, $3, $4, $5)",
		balance.ID, balance.Debtor, balance.Creditor, balance.Amount, balance.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert balance: %w", err)
	}
	return nil
}

func (b *balances) UpdateBalance(ctx context.Context, balance *models.PairwiseBalance, amount decimal.Decimal) error {
	now := time.Now().Unix()
	res, err := b.q.ExecContext(ctx,
		"UPDATE balances SET amount = $1, updated_at = $2 WHERE id = $3",
		amount, now, balance.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	if err := expectOneRow(res, balance.ID); err != nil {
		return err
	}
	balance.Amount = amount
	balance.UpdatedAt = now
	return nil
}

func (b *balances) DeleteBalance(ctx context.Context, balance *models.PairwiseBalance) error {
	res, err := b.q.ExecContext(ctx, "DELETE FROM balances WHERE id = $1", balance.ID)
	if err != nil {
		return fmt.Errorf("failed to delete balance: %w", err)
	}
	return expectOneRow(res, balance.ID)
}

func (b *balances) ListBalancesWhere(ctx context.Context, field storage.BalanceField, userID string) ([]*models.PairwiseBalance, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("invalid balance field: %q", field)
	}
	orderBy := storage.FieldCreditor
	if field == storage.FieldCreditor {
		orderBy = storage.FieldDebtor
	}

	rows, err := b.q.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM balances WHERE %s = $1 ORDER BY %s", balanceColumns, field, orderBy),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}
	defer rows.Close()

	var out []*models.PairwiseBalance
	for rows.Next() {
		balance, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		out = append(out, balance)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balances: %w", err)
	}
	return out, nil
}

func (b *balances) lockClause() string {
	if b.forUpdate {
		return " FOR UPDATE"
	}
	return ""
}

type scanner interface {
	Scan(dest ...any) error
}

// scanBalance reads NUMERIC through decimal's sql.Scanner.
func scanBalance(row scanner) (*models.PairwiseBalance, error) {
	balance := &models.PairwiseBalance{}
	err := row.Scan(&balance.ID, &balance.Debtor, &balance.Creditor, &balance.Amount, &balance.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return balance, nil
}

func expectOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("balance %s: %w", id, storage.ErrNotFound)
	}
	return nil
}
