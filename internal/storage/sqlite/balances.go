package sqlite

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

// balances implements storage.BalanceStore on a connection or a transaction.
type balances struct {
	q querier
}

// WithinTx joins the current transaction. SQLiteStore overrides it to
// start one.
func (b *balances) WithinTx(ctx context.Context, fn func(ctx context.Context, tx storage.BalanceStore) error) error {
	return fn(ctx, b)
}

// FindBalance retrieves the debtor->creditor balance, or nil if none exists.
func (b *balances) FindBalance(ctx context.Context, debtor, creditor string) (*models.PairwiseBalance, error) {
	row := b.q.QueryRowContext(ctx,
		"SELECT "+balanceColumns+" FROM balances WHERE debtor = ? AND creditor = ?",
		debtor, creditor,
	)
	balance, err := scanBalance(row)
	if err != nil {
		return nil, fmt.Errorf("failed to find balance: %w", err)
	}
	return balance, nil
}

// FindPairBalance retrieves the balance between a and b in either direction.
func (b *balances) FindPairBalance(ctx context.Context, a, c string) (*models.PairwiseBalance, error) {
	row := b.q.QueryRowContext(ctx,
		"SELECT "+balanceColumns+` FROM balances
		 WHERE (debtor = ? AND creditor = ?) OR (debtor = ? AND creditor = ?)
		 LIMIT 1`,
		a, c, c, a,
	)
	balance, err := scanBalance(row)
	if err != nil {
		return nil, fmt.Errorf("failed to find pair balance: %w", err)
	}
	return balance, nil
}

// CreateBalance inserts a new balance record.
func (b *balances) CreateBalance(ctx context.Context, balance *models.PairwiseBalance) error {
	if balance.ID == "" {
		balance.ID = uuid.New().String()
	}
	if balance.UpdatedAt == 0 {
		balance.UpdatedAt = time.Now().Unix()
	}

	_, err := b.q.ExecContext(ctx,
		"INSERT INTO balances ("+balanceColumns+") VALUES (?, ?, ?, ?, ?)",
		balance.ID, balance.Debtor, balance.Creditor, balance.Amount.String(), balance.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert balance: %w", err)
	}
	return nil
}

// UpdateBalance sets a new amount on an existing record.
func (b *balances) UpdateBalance(ctx context.Context, balance *models.PairwiseBalance, amount decimal.Decimal) error {
	now := time.Now().Unix()
	res, err := b.q.ExecContext(ctx,
		"UPDATE balances SET amount = ?, updated_at = ? WHERE id = ?",
		amount.String(), now, balance.ID,
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

// DeleteBalance removes a record.
func (b *balances) DeleteBalance(ctx context.Context, balance *models.PairwiseBalance) error {
	res, err := b.q.ExecContext(ctx, "DELETE FROM balances WHERE id = ?", balance.ID)
	if err != nil {
		return fmt.Errorf("failed to delete balance: %w", err)
	}
	return expectOneRow(res, balance.ID)
}

// ListBalancesWhere lists every record where field equals userID.
func (b *balances) ListBalancesWhere(ctx context.Context, field storage.BalanceField, userID string) ([]*models.PairwiseBalance, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("invalid balance field: %q", field)
	}
	orderBy := storage.FieldCreditor
	if field == storage.FieldCreditor {
		orderBy = storage.FieldDebtor
	}

	rows, err := b.q.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM balances WHERE %s = ? ORDER BY %s", balanceColumns, field, orderBy),
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

type scanner interface {
	Scan(dest ...any) error
}

// scanBalance reads one balance row; a missing row yields (nil, nil).
func scanBalance(row scanner) (*models.PairwiseBalance, error) {
	balance := &models.PairwiseBalance{}
	var amount string
	err := row.Scan(&balance.ID, &balance.Debtor, &balance.Creditor, &amount, &balance.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	balance.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
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
