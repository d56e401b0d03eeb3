package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/spendtrack/spendtrack-go/internal/model"
	"github.com/spendtrack/spendtrack-go/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type expenseDoc struct {
	ID          string               `bson:"_id"`
	UserID      string               `bson:"user_id"`
	Description string               `bson:"description"`
	Amount      primitive.Decimal128 `bson:"amount"`
	Date        time.Time            `bson:"date"`
	Category    string               `bson:"category"`
	CreatedAt   time.Time            `bson:"created_at"`
}

func toExpenseDoc(e *model.Expense) (expenseDoc, error) {
	amount, err := primitive.ParseDecimal128(e.Amount.String())
	if err != nil {
		return expenseDoc{}, fmt.Errorf("encoding amount %s: %w", e.Amount, err)
	}

	return expenseDoc{
		ID:          e.ID,
		UserID:      e.UserID,
		Description: e.Description,
		Amount:      amount,
		Date:        e.Date.Time(),
		Category:    string(e.Category),
		CreatedAt:   e.CreatedAt,
	}, nil
}

func (d expenseDoc) toModel() (model.Expense, error) {
	amount, err := model.NewAmount(d.Amount.String())
	if err != nil {
		return model.Expense{}, err
	}

	return model.Expense{
		ID:          d.ID,
		UserID:      d.UserID,
		Description: d.Description,
		Amount:      amount,
		Date:        model.DateOf(d.Date.UTC()),
		Category:    model.Category(d.Category),
		CreatedAt:   d.CreatedAt,
	}, nil
}

// ExpenseRepository stores expenses as documents. Every filter includes the
// owner's user_id.
type ExpenseRepository struct {
	collection *mongo.Collection
}

// Create inserts an expense and sets its generated ID and CreatedAt.
func (r *ExpenseRepository) Create(ctx context.Context, e *model.Expense) error {
	id, err := repository.NewID()
	if err != nil {
		return err
	}

	stored := *e
	stored.ID = id
	stored.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	doc, err := toExpenseDoc(&stored)
	if err != nil {
		return err
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("inserting expense: %w", err)
	}

	e.ID = stored.ID
	e.CreatedAt = stored.CreatedAt
	return nil
}

// ListByUser retrieves a user's expenses, newest date first, then newest
// insertion first.
func (r *ExpenseRepository) ListByUser(ctx context.Context, userID string) ([]model.Expense, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})

	cur, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}

	var docs []expenseDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding expenses: %w", err)
	}

	expenses := make([]model.Expense, 0, len(docs))
	for _, d := range docs {
		e, err := d.toModel()
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}

	return expenses, nil
}

// Delete removes one expense owned by userID.
func (r *ExpenseRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("deleting expense: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrExpenseNotFound
	}
	return nil
}

// DeleteMany removes those of ids that belong to userID.
func (r *ExpenseRepository) DeleteMany(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res, err := r.collection.DeleteMany(ctx, bson.M{
		"_id":     bson.M{"$in": ids},
		"user_id": userID,
	})
	if err != nil {
		return 0, fmt.Errorf("deleting expenses: %w", err)
	}

	return res.DeletedCount, nil
}
