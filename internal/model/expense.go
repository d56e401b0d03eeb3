package model

import (
	"strings"
	"time"
)

// Category is one of the fixed expense categories.
type Category string

const (
	CategoryFood           Category = "Food"
	CategoryTransportation Category = "Transportation"
	CategoryEntertainment  Category = "Entertainment"
	CategoryShopping       Category = "Shopping"
	CategoryBills          Category = "Bills"
	CategoryHealthcare     Category = "Healthcare"
	CategoryOther          Category = "Other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryFood,
	CategoryTransportation,
	CategoryEntertainment,
	CategoryShopping,
	CategoryBills,
	CategoryHealthcare,
	CategoryOther,
}

// ParseCategory matches s case-insensitively against the known categories.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

// NormalizeCategory returns the canonical category for s, or CategoryOther
// when s is empty or unknown.
func NormalizeCategory(s string) Category {
	if c, ok := ParseCategory(s); ok {
		return c
	}
	return CategoryOther
}

// Expense represents a single expense owned by one user.
type Expense struct {
	ID          string
	UserID      string
	Description string
	Amount      Amount
	Date        Date
	Category    Category
	CreatedAt   time.Time
}

// CreateExpenseRequest represents an expense creation request. Amount and
// Date are pointers so a missing field can be told apart from a zero one.
type CreateExpenseRequest struct {
	Description string  `json:"description" validate:"required,max=100"`
	Amount      *Amount `json:"amount" validate:"required"`
	Date        *Date   `json:"date" validate:"required"`
	Category    string  `json:"category"`
}

// BulkDeleteRequest names the expenses to delete.
type BulkDeleteRequest struct {
	ExpenseIDs []string `json:"expenseIds" validate:"required,min=1,max=1000"`
}

// BulkDeleteResponse reports how many expenses were actually removed.
type BulkDeleteResponse struct {
	DeletedCount int64 `json:"deletedCount"`
}

// ExpenseResponse represents an expense in API responses.
type ExpenseResponse struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Amount      Amount    `json:"amount"`
	Date        Date      `json:"date"`
	Category    Category  `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ExpenseEnvelope wraps a single expense.
type ExpenseEnvelope struct {
	Expense ExpenseResponse `json:"expense"`
}

// ExpenseListResponse wraps a list of expenses.
type ExpenseListResponse struct {
	Expenses []ExpenseResponse `json:"expenses"`
}

// CategoryTotal is the spend for one category.
type CategoryTotal struct {
	Category Category `json:"category"`
	Total    Amount   `json:"total"`
	Count    int      `json:"count"`
}

// SummaryResponse totals a user's expenses.
type SummaryResponse struct {
	Total      Amount          `json:"total"`
	Count      int             `json:"count"`
	Categories []CategoryTotal `json:"categories"`
}

// ToResponse converts e for API output.
func (e Expense) ToResponse() ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		Date:        e.Date,
		Category:    e.Category,
		CreatedAt:   e.CreatedAt,
	}
}
