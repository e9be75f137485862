package store

import (
	"context"
	"testing"
	"time"

	"github.com/zalar/inventar/internal/db"
	"github.com/zalar/inventar/internal/model"
)

func TestGetSummary(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	drill, _ := CreateItem(ctx, database, "Drill", model.CategoryTool, 5)
	CreateItem(ctx, database, "Screws", model.CategoryConsumable, 3)
	CreateItem(ctx, database, "Empty bin", model.CategoryTool, 0)

	Checkout(ctx, database, drill.ID, "Alice", 1, past(), nil)  // overdue loan
	Checkout(ctx, database, drill.ID, "Bob", 1, future(), nil)  // current loan

	s, err := GetSummary(ctx, database, time.Now())
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}

	if s.TotalItems != 3 {
		t.Errorf("expected 3 items, got %d", s.TotalItems)
	}
	if s.InStock != 1 || s.LowStock != 1 || s.OutOfStock != 1 {
		t.Errorf("unexpected status counts: %+v", s)
	}
	if s.OpenLoans != 2 {
		t.Errorf("expected 2 open loans, got %d", s.OpenLoans)
	}
	if s.OverdueLoans != 1 {
		t.Errorf("expected 1 overdue loan, got %d", s.OverdueLoans)
	}
	if s.Movements != 2 {
		t.Errorf("expected 2 movements, got %d", s.Movements)
	}
}
