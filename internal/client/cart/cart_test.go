package cart

import (
	"errors"
	"testing"

	"github.com/mukkai/mukkai-go/internal/client/clienterr"
	"github.com/mukkai/mukkai-go/internal/client/storage"
	"github.com/mukkai/mukkai-go/internal/models"

	"github.com/shopspring/decimal"
)

func loggedIn() bool  { return true }
func loggedOut() bool { return false }

func menuItem(menuID, storeID uint, price int64, qty int) Item {
	return Item{
		StoreMenuID: menuID,
		StoreID:     storeID,
		Name:        "测试菜品",
		UnitAmount:  models.NewMoneyFromDecimal(decimal.NewFromInt(price)),
		Quantity:    qty,
	}
}

func TestAddItemRequiresLogin(t *testing.T) {
	engine := NewEngine(storage.NewMemoryStore(), loggedOut, nil)

	err := engine.AddItem(menuItem(1, 1, 8000, 1))
	if !errors.Is(err, clienterr.ErrAuthRequired) {
		t.Fatalf("add without login want ErrAuthRequired got %v", err)
	}
	if len(engine.Items()) != 0 {
		t.Fatalf("cart should stay empty, got %d items", len(engine.Items()))
	}
}

func TestAddItemValidation(t *testing.T) {
	engine := NewEngine(storage.NewMemoryStore(), loggedIn, nil)

	if err := engine.AddItem(menuItem(0, 1, 8000, 1)); !errors.Is(err, clienterr.ErrValidation) {
		t.Fatalf("missing menu id want ErrValidation got %v", err)
	}
	if err := engine.AddItem(menuItem(1, 1, 8000, 0)); !errors.Is(err, clienterr.ErrValidation) {
		t.Fatalf("zero quantity want ErrValidation got %v", err)
	}
}

func TestAddItemMergesSameMenu(t *testing.T) {
	engine := NewEngine(storage.NewMemoryStore(), loggedIn, nil)

	if err := engine.AddItem(menuItem(1, 1, 8000, 1)); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := engine.AddItem(menuItem(1, 1, 8000, 2)); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	items := engine.Items()
	if len(items) != 1 {
		t.Fatalf("items want 1 got %d", len(items))
	}
	if items[0].Quantity != 3 {
		t.Fatalf("quantity want 3 got %d", items[0].Quantity)
	}
	if engine.ItemCount() != 3 {
		t.Fatalf("item count want 3 got %d", engine.ItemCount())
	}
}

func TestAddItemRejectsOtherStoreWithoutConfirm(t *testing.T) {
	engine := NewEngine(storage.NewMemoryStore(), loggedIn, func(oldStoreID, newStoreID uint) bool {
		return false
	})

	if err := engine.AddItem(menuItem(1, 1, 8000, 1)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	err := engine.AddItem(menuItem(9, 2, 5000, 1))
	if !errors.Is(err, clienterr.ErrValidation) {
		t.Fatalf("cross-store add want ErrValidation got %v", err)
	}
	if engine.ActiveStoreID() != 1 {
		t.Fatalf("active store want 1 got %d", engine.ActiveStoreID())
	}
	if len(engine.Items()) != 1 {
		t.Fatalf("items want 1 got %d", len(engine.Items()))
	}
}

func TestAddItemConfirmedSwitchClearsCart(t *testing.T) {
	var gotOld, gotNew uint
	engine := NewEngine(storage.NewMemoryStore(), loggedIn, func(oldStoreID, newStoreID uint) bool {
		gotOld, gotNew = oldStoreID, newStoreID
		return true
	})

	if err := engine.AddItem(menuItem(1, 1, 8000, 2)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := engine.AddItem(menuItem(9, 2, 5000, 1)); err != nil {
		t.Fatalf("switch add failed: %v", err)
	}

	if gotOld != 1 || gotNew != 2 {
		t.Fatalf("confirm args want (1,2) got (%d,%d)", gotOld, gotNew)
	}
	items := engine.Items()
	if len(items) != 1 || items[0].StoreMenuID != 9 {
		t.Fatalf("cart should only hold new store item, got %+v", items)
	}
	if engine.ActiveStoreID() != 2 {
		t.Fatalf("active store want 2 got %d", engine.ActiveStoreID())
	}
}

func TestUpdateQuantityZeroRemoves(t *testing.T) {
	engine := NewEngine(storage.NewMemoryStore(), loggedIn, nil)

	if err := engine.AddItem(menuItem(1, 1, 8000, 2)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := engine.UpdateQuantity(1, 0); err != nil {
		t.Fatalf("update to zero failed: %v", err)
	}
	if len(engine.Items()) != 0 {
		t.Fatalf("items want 0 got %d", len(engine.Items()))
	}
	if engine.ActiveStoreID() != 0 {
		t.Fatalf("active store should reset, got %d", engine.ActiveStoreID())
	}
}

func TestUpdateQuantityMissingItemIsNoop(t *testing.T) {
	engine := NewEngine(storage.NewMemoryStore(), loggedIn, nil)
	if err := engine.AddItem(menuItem(1, 1, 8000, 2)); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if err := engine.UpdateQuantity(42, 3); err != nil {
		t.Fatalf("update missing should be silent, got %v", err)
	}
	items := engine.Items()
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("cart should be untouched, got %+v", items)
	}
}

func TestRemoveMissingItemIsNoop(t *testing.T) {
	engine := NewEngine(storage.NewMemoryStore(), loggedIn, nil)

	if err := engine.RemoveItem(42); err != nil {
		t.Fatalf("remove missing should be silent, got %v", err)
	}
}

func TestTotalAmountDerivedFromItems(t *testing.T) {
	engine := NewEngine(storage.NewMemoryStore(), loggedIn, nil)

	if err := engine.AddItem(menuItem(1, 1, 8000, 2)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := engine.AddItem(menuItem(2, 1, 3500, 1)); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	total := engine.TotalAmount()
	if !total.Decimal.Equal(decimal.NewFromInt(19500)) {
		t.Fatalf("total want 19500 got %s", total)
	}

	if err := engine.UpdateQuantity(1, 1); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	total = engine.TotalAmount()
	if !total.Decimal.Equal(decimal.NewFromInt(11500)) {
		t.Fatalf("total after update want 11500 got %s", total)
	}
}

func TestCartPersistRestoreRoundtrip(t *testing.T) {
	store := storage.NewMemoryStore()

	engine := NewEngine(store, loggedIn, nil)
	first := menuItem(1, 7, 8000, 2)
	first.ThumbnailURL = "https://img.example.com/chicken.jpg"
	if err := engine.AddItem(first); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := engine.AddItem(menuItem(2, 7, 3500, 1)); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	restored := NewEngine(store, loggedIn, nil)
	if restored.ActiveStoreID() != 7 {
		t.Fatalf("restored store want 7 got %d", restored.ActiveStoreID())
	}
	items := restored.Items()
	if len(items) != 2 {
		t.Fatalf("restored items want 2 got %d", len(items))
	}
	if items[0].ThumbnailURL != "https://img.example.com/chicken.jpg" {
		t.Fatalf("restored thumbnail want snapshot got %q", items[0].ThumbnailURL)
	}
	if restored.ItemCount() != 3 {
		t.Fatalf("restored count want 3 got %d", restored.ItemCount())
	}
}

func TestCartRestoreToleratesCorruptState(t *testing.T) {
	store := storage.NewMemoryStore()
	if err := store.Set("cart-storage", "{not-json"); err != nil {
		t.Fatalf("seed corrupt state failed: %v", err)
	}

	engine := NewEngine(store, loggedIn, nil)
	if len(engine.Items()) != 0 {
		t.Fatalf("corrupt state should yield empty cart, got %d items", len(engine.Items()))
	}
	if err := engine.AddItem(menuItem(1, 1, 8000, 1)); err != nil {
		t.Fatalf("add after corrupt restore failed: %v", err)
	}
}

func TestClearResetsStore(t *testing.T) {
	engine := NewEngine(storage.NewMemoryStore(), loggedIn, nil)

	if err := engine.AddItem(menuItem(1, 1, 8000, 1)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := engine.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if engine.ActiveStoreID() != 0 || len(engine.Items()) != 0 {
		t.Fatalf("clear should empty cart, store=%d items=%d", engine.ActiveStoreID(), len(engine.Items()))
	}
}
