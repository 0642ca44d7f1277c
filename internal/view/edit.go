package view

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pocketledger/internal/domain"
	"pocketledger/internal/finance"
)

var (
	ErrInvalidAmount   = errors.New("amount must be a number greater than zero")
	ErrMissingCategory = errors.New("category is required")
)

// EditInput is the raw operator input for creating or editing a
// transaction. A blank TxID means create.
type EditInput struct {
	TxID            string
	AmountText      string
	Type            domain.TxType
	CategoryID      string
	Note            string
	DateEpochMillis int64 // 0 keeps the original date, or now on create
}

// TransactionEditor validates operator input and writes transactions.
// On edit the original createdAt is preserved so the record keeps its
// place in creation order.
type TransactionEditor struct {
	repo *finance.Repository
	uid  string

	now func() int64
}

func NewTransactionEditor(repo *finance.Repository, uid string) *TransactionEditor {
	return &TransactionEditor{
		repo: repo,
		uid:  uid,
		now:  func() int64 { return time.Now().UnixMilli() },
	}
}

func (e *TransactionEditor) Save(ctx context.Context, in EditInput) (string, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(in.AmountText), 64)
	if err != nil || amount <= 0 {
		return "", ErrInvalidAmount
	}
	if strings.TrimSpace(in.CategoryID) == "" {
		return "", ErrMissingCategory
	}

	tx := domain.Transaction{
		ID:         in.TxID,
		Amount:     amount,
		Type:       in.Type,
		CategoryID: in.CategoryID,
		Note:       strings.TrimSpace(in.Note),
	}
	if tx.Type == "" {
		tx.Type = domain.Expense
	}

	tx.DateEpochMillis = in.DateEpochMillis
	tx.CreatedAt = e.now()
	if in.TxID != "" {
		orig, err := e.repo.GetTransaction(ctx, e.uid, in.TxID)
		if err != nil {
			return "", fmt.Errorf("load transaction for edit: %w", err)
		}
		tx.CreatedAt = orig.CreatedAt
		if tx.DateEpochMillis == 0 {
			tx.DateEpochMillis = orig.DateEpochMillis
		}
	}
	if tx.DateEpochMillis == 0 {
		tx.DateEpochMillis = e.now()
	}

	return e.repo.UpsertTransaction(ctx, e.uid, tx)
}
