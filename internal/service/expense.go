package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendtrack/spendtrack-go/internal/model"
	"github.com/spendtrack/spendtrack-go/internal/repository"
)

var (
	minAmount = decimal.New(1, -2) // 0.01
	maxAmount = decimal.RequireFromString("9999999999.99")
)

// ExpenseStore persists expenses. Every method takes the owner's ID and
// must never touch another user's records.
type ExpenseStore interface {
	Create(ctx context.Context, e *model.Expense) error
	ListByUser(ctx context.Context, userID string) ([]model.Expense, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteMany(ctx context.Context, userID string, ids []string) (int64, error)
}

// ExpenseService handles expense business logic. The userID argument of
// every method must come from a verified token.
type ExpenseService struct {
	store ExpenseStore
	now   func() time.Time
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(store ExpenseStore) *ExpenseService {
	return &ExpenseService{store: store, now: time.Now}
}

// List returns the user's expenses, newest first.
func (s *ExpenseService) List(ctx context.Context, userID string) ([]model.ExpenseResponse, error) {
	expenses, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return expensesToResponse(expenses), nil
}

// Create validates req and stores it as a new expense owned by userID.
func (s *ExpenseService) Create(ctx context.Context, userID string, req model.CreateExpenseRequest) (model.ExpenseResponse, error) {
	req.Description = strings.TrimSpace(req.Description)

	if err := validateStruct(req); err != nil {
		return model.ExpenseResponse{}, err
	}

	if !req.Amount.ExponentInRange() {
		return model.ExpenseResponse{}, ErrAmountOutOfRange
	}

	amount := req.Amount.Decimal
	switch {
	case amount.LessThan(minAmount):
		return model.ExpenseResponse{}, ErrAmountNotPositive
	case !amount.Equal(amount.Round(2)):
		return model.ExpenseResponse{}, ErrAmountPrecision
	case amount.GreaterThan(maxAmount):
		return model.ExpenseResponse{}, ErrAmountTooLarge
	}

	if req.Date.IsZero() {
		return model.ExpenseResponse{}, newValidationError("date", "date is required")
	}
	today := model.DateOf(s.now().UTC())
	if req.Date.After(today) {
		return model.ExpenseResponse{}, ErrDateInFuture
	}

	category := model.NormalizeCategory(req.Category)
	if req.Category != "" && string(category) != strings.TrimSpace(req.Category) {
		slog.Debug("expense category coerced", "given", req.Category, "stored", category)
	}

	expense := model.Expense{
		UserID:      userID,
		Description: req.Description,
		Amount:      model.Amount{Decimal: amount},
		Date:        *req.Date,
		Category:    category,
	}

	if err := s.store.Create(ctx, &expense); err != nil {
		return model.ExpenseResponse{}, err
	}

	return expense.ToResponse(), nil
}

// Delete removes one of the user's expenses. An ID owned by someone else is
// reported exactly like one that does not exist.
func (s *ExpenseService) Delete(ctx context.Context, userID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrExpenseNotFound
	}

	err := s.store.Delete(ctx, userID, id)
	if errors.Is(err, repository.ErrExpenseNotFound) {
		return ErrExpenseNotFound
	}
	return err
}

// BulkDelete removes those of the requested expenses that belong to userID
// and reports how many were deleted. Other users' IDs are silently skipped.
func (s *ExpenseService) BulkDelete(ctx context.Context, userID string, req model.BulkDeleteRequest) (int64, error) {
	if err := validateStruct(req); err != nil {
		return 0, err
	}

	ids := uniqueIDs(req.ExpenseIDs)
	if len(ids) == 0 {
		return 0, ErrNoExpenseIDs
	}

	deleted, err := s.store.DeleteMany(ctx, userID, ids)
	if err != nil {
		return 0, err
	}

	slog.Debug("expenses deleted", "user_id", userID, "requested", len(ids), "deleted", deleted)
	return deleted, nil
}

// Summary totals the user's expenses overall and per category.
func (s *ExpenseService) Summary(ctx context.Context, userID string) (model.SummaryResponse, error) {
	expenses, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return model.SummaryResponse{}, err
	}

	totals := make(map[model.Category]*model.CategoryTotal)
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount.Decimal)

		ct, ok := totals[e.Category]
		if !ok {
			ct = &model.CategoryTotal{Category: e.Category}
			totals[e.Category] = ct
		}
		ct.Total = model.Amount{Decimal: ct.Total.Add(e.Amount.Decimal)}
		ct.Count++
	}

	categories := make([]model.CategoryTotal, 0, len(totals))
	for _, c := range model.Categories {
		if ct, ok := totals[c]; ok {
			categories = append(categories, *ct)
		}
	}

	return model.SummaryResponse{
		Total:      model.Amount{Decimal: total},
		Count:      len(expenses),
		Categories: categories,
	}, nil
}

// uniqueIDs trims ids, drops blanks and duplicates, and keeps first-seen order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// expensesToResponse converts expenses for API output. It never returns nil.
func expensesToResponse(expenses []model.Expense) []model.ExpenseResponse {
	result := make([]model.ExpenseResponse, len(expenses))
	for i, e := range expenses {
		result[i] = e.ToResponse()
	}
	return result
}
