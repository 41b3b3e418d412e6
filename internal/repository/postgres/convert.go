package postgres

import (
	"time"

	"github.com/dafibh/spendsmart/spendsmart-backend/db/sqlc"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func decimalToPgNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var num pgtype.Numeric
	if err := num.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, err
	}
	return num, nil
}

func pgNumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	if n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func timePtrToPgTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func pgTimestamptzToTimePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func stringPtrToPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func pgTextToStringPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	v := t.String
	return &v
}

func sqlcUserToDomain(u sqlc.User) *domain.User {
	return &domain.User{
		ID:        u.ID,
		Auth0ID:   u.Auth0ID,
		Email:     u.Email,
		Name:      pgTextToStringPtr(u.Name),
		ImageURL:  pgTextToStringPtr(u.ImageUrl),
		CreatedAt: u.CreatedAt.Time,
		UpdatedAt: u.UpdatedAt.Time,
	}
}

func sqlcAccountToDomain(a sqlc.Account) *domain.Account {
	return &domain.Account{
		ID:        a.ID,
		UserID:    a.UserID,
		Name:      a.Name,
		Type:      domain.AccountType(a.Type),
		Balance:   pgNumericToDecimal(a.Balance),
		IsDefault: a.IsDefault,
		CreatedAt: a.CreatedAt.Time,
		UpdatedAt: a.UpdatedAt.Time,
	}
}

func sqlcTransactionToDomain(t sqlc.Transaction) *domain.Transaction {
	tx := &domain.Transaction{
		ID:                t.ID,
		UserID:            t.UserID,
		AccountID:         t.AccountID,
		Type:              domain.TransactionType(t.Type),
		Amount:            pgNumericToDecimal(t.Amount),
		Description:       pgTextToStringPtr(t.Description),
		Date:              t.Date.Time,
		Category:          t.Category,
		ReceiptURL:        pgTextToStringPtr(t.ReceiptUrl),
		IsRecurring:       t.IsRecurring,
		NextRecurringDate: pgTimestamptzToTimePtr(t.NextRecurringDate),
		LastProcessed:     pgTimestamptzToTimePtr(t.LastProcessed),
		Status:            domain.TransactionStatus(t.Status),
		CreatedAt:         t.CreatedAt.Time,
		UpdatedAt:         t.UpdatedAt.Time,
	}
	if t.RecurringInterval.Valid {
		interval := domain.RecurringInterval(t.RecurringInterval.String)
		tx.RecurringInterval = &interval
	}
	return tx
}

func sqlcBudgetToDomain(b sqlc.Budget) *domain.Budget {
	return &domain.Budget{
		ID:            b.ID,
		UserID:        b.UserID,
		Amount:        pgNumericToDecimal(b.Amount),
		LastAlertSent: pgTimestamptzToTimePtr(b.LastAlertSent),
		CreatedAt:     b.CreatedAt.Time,
		UpdatedAt:     b.UpdatedAt.Time,
	}
}
