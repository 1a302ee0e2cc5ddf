package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/database"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/testutil"
)

func seedProducts(t *testing.T, repo *GormProductRepository) []*models.Product {
	t.Helper()
	products := []*models.Product{
		{Name: "Whey Protein", Description: "Vanilla whey isolate", Price: 39.99, Category: models.CategorySupplements, ImageURL: "/img/whey.png", Stock: 10, Featured: true, Active: true},
		{Name: "Lifting Belt", Description: "Leather belt", Price: 59.00, Category: models.CategoryAccessories, ImageURL: "/img/belt.png", Stock: 0, Active: true},
		{Name: "Training Tee", Description: "Breathable cotton", Price: 19.50, Category: models.CategoryApparel, ImageURL: "/img/tee.png", Stock: 25, Active: true},
		{Name: "Retired Shaker", Description: "Old shaker", Price: 5.00, Category: models.CategoryAccessories, ImageURL: "/img/shaker.png", Stock: 3, Active: false},
	}
	for _, p := range products {
		if err := repo.Create(context.Background(), p); err != nil {
			t.Fatalf("seed product %s: %v", p.Name, err)
		}
	}
	return products
}

func TestProductRepository_List(t *testing.T) {
	repo := NewProductRepository(testutil.DB(t))
	seedProducts(t, repo)
	ctx := context.Background()

	minPrice := 20.0
	tests := []struct {
		name   string
		filter models.ProductFilter
		want   []string
	}{
		{name: "active only", filter: models.ProductFilter{Sort: models.SortNameAsc}, want: []string{"Lifting Belt", "Training Tee", "Whey Protein"}},
		{name: "include inactive", filter: models.ProductFilter{IncludeInactive: true, Sort: models.SortPriceAsc}, want: []string{"Retired Shaker", "Training Tee", "Whey Protein", "Lifting Belt"}},
		{name: "category", filter: models.ProductFilter{Category: models.CategoryApparel}, want: []string{"Training Tee"}},
		{name: "in stock by price desc", filter: models.ProductFilter{InStock: true, Sort: models.SortPriceDesc}, want: []string{"Whey Protein", "Training Tee"}},
		{name: "min price", filter: models.ProductFilter{MinPrice: &minPrice, Sort: models.SortNameDesc}, want: []string{"Whey Protein", "Lifting Belt"}},
		{name: "featured", filter: models.ProductFilter{Featured: true}, want: []string{"Whey Protein"}},
		{name: "search description case-insensitive", filter: models.ProductFilter{Query: "LEATHER"}, want: []string{"Lifting Belt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(products) != len(tt.want) {
				t.Fatalf("List() returned %d products, want %d", len(products), len(tt.want))
			}
			for i, name := range tt.want {
				if products[i].Name != name {
					t.Errorf("products[%d] = %s, want %s", i, products[i].Name, name)
				}
			}
		})
	}
}

func TestProductRepository_UpdateDelete(t *testing.T) {
	repo := NewProductRepository(testutil.DB(t))
	products := seedProducts(t, repo)
	ctx := context.Background()

	p := products[0]
	p.Price = 35
	p.Featured = false
	if err := repo.Update(ctx, p); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Price != 35 || got.Featured {
		t.Errorf("update not persisted: %+v", got)
	}

	if err := repo.Update(ctx, &models.Product{ID: "missing", Name: "x"}); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrProductNotFound", err)
	}

	if err := repo.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(ctx, p.ID); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("GetByID after delete error = %v, want ErrProductNotFound", err)
	}
	if err := repo.Delete(ctx, p.ID); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("second Delete() error = %v, want ErrProductNotFound", err)
	}
}

func TestProductRepository_Stock(t *testing.T) {
	repo := NewProductRepository(testutil.DB(t))
	products := seedProducts(t, repo)
	ctx := context.Background()
	whey := products[0]

	if err := repo.DecrementStock(ctx, whey.ID, 4); err != nil {
		t.Fatalf("DecrementStock() error = %v", err)
	}
	if err := repo.DecrementStock(ctx, whey.ID, 7); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("DecrementStock() over stock error = %v, want ErrInsufficientStock", err)
	}
	if err := repo.IncrementStock(ctx, whey.ID, 2); err != nil {
		t.Fatalf("IncrementStock() error = %v", err)
	}

	got, _ := repo.GetByID(ctx, whey.ID)
	if got.Stock != 8 {
		t.Errorf("stock = %d, want 8", got.Stock)
	}
}

func TestTransactor_RollsBack(t *testing.T) {
	db := testutil.DB(t)
	repo := NewProductRepository(db)
	products := seedProducts(t, repo)
	tx := database.NewTransactor(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := repo.DecrementStock(ctx, products[0].ID, 5); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx() error = %v, want boom", err)
	}

	got, _ := repo.GetByID(ctx, products[0].ID)
	if got.Stock != 10 {
		t.Errorf("stock after rollback = %d, want 10", got.Stock)
	}
}

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(testutil.DB(t))
	ctx := context.Background()

	u := &models.User{Username: "lifter", Email: "lifter@example.com", PasswordHash: "hash"}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	dup := &models.User{Username: "lifter", Email: "other@example.com", PasswordHash: "hash"}
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Create(duplicate) error = %v, want ErrDuplicate", err)
	}

	if got, err := repo.FindByUsernameOrEmail(ctx, "nobody", "lifter@example.com"); err != nil || got.ID != u.ID {
		t.Errorf("FindByUsernameOrEmail() = %v, %v", got, err)
	}

	token := "refresh-1"
	if err := repo.SetRefreshToken(ctx, u.ID, &token); err != nil {
		t.Fatalf("SetRefreshToken() error = %v", err)
	}
	if got, err := repo.GetByRefreshToken(ctx, token); err != nil || got.ID != u.ID {
		t.Errorf("GetByRefreshToken() = %v, %v", got, err)
	}

	reset := "abc123"
	expires := time.Now().Add(time.Hour)
	if err := repo.SetResetToken(ctx, u.ID, &reset, &expires); err != nil {
		t.Fatalf("SetResetToken() error = %v", err)
	}
	if _, err := repo.GetByResetToken(ctx, reset, time.Now()); err != nil {
		t.Errorf("GetByResetToken() error = %v", err)
	}
	if _, err := repo.GetByResetToken(ctx, reset, time.Now().Add(2*time.Hour)); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByResetToken(expired) error = %v, want ErrUserNotFound", err)
	}

	if err := repo.SetPassword(ctx, u.ID, "new-hash"); err != nil {
		t.Fatalf("SetPassword() error = %v", err)
	}
	got, _ := repo.GetByID(ctx, u.ID)
	if got.PasswordHash != "new-hash" || got.ResetPasswordToken != nil || got.RefreshToken != nil {
		t.Errorf("SetPassword() did not clear tokens: %+v", got)
	}
}

func TestCartRepository(t *testing.T) {
	db := testutil.DB(t)
	products := seedProducts(t, NewProductRepository(db))
	repo := NewCartRepository(db)
	ctx := context.Background()

	if _, err := repo.GetByUserID(ctx, "u1", false); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("GetByUserID() error = %v, want ErrCartNotFound", err)
	}

	cart := &models.Cart{UserID: "u1"}
	if err := repo.Create(ctx, cart); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	cart.Items = []models.CartItem{
		{ProductID: products[2].ID, Quantity: 2, Price: 19.5},
		{ProductID: products[0].ID, Quantity: 1, Price: 39.99},
	}
	cart.Recalculate()
	if err := repo.Save(ctx, cart); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.GetByUserID(ctx, "u1", true)
	if err != nil {
		t.Fatalf("GetByUserID() error = %v", err)
	}
	if len(got.Items) != 2 || got.Total != 78.99 {
		t.Fatalf("cart = %+v", got)
	}
	if got.Items[0].Product == nil || got.Items[0].Product.Name != "Training Tee" {
		t.Errorf("first line product = %+v, want Training Tee", got.Items[0].Product)
	}

	got.Items = got.Items[:0]
	got.Recalculate()
	if err := repo.Save(ctx, got); err != nil {
		t.Fatalf("Save(empty) error = %v", err)
	}
	empty, _ := repo.GetByUserID(ctx, "u1", false)
	if len(empty.Items) != 0 || empty.Total != 0 {
		t.Errorf("cart not cleared: %+v", empty)
	}
}

func TestCouponRepository(t *testing.T) {
	repo := NewCouponRepository(testutil.DB(t))
	ctx := context.Background()

	limit := 1
	c := &models.Coupon{Code: " save10 ", Discount: 10, DiscountType: models.DiscountPercentage, ExpirationDate: time.Now().Add(time.Hour), IsActive: true, MaxUses: &limit}
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if c.Code != "SAVE10" {
		t.Errorf("code = %q, want SAVE10", c.Code)
	}

	got, err := repo.GetByCode(ctx, "save10")
	if err != nil {
		t.Fatalf("GetByCode() error = %v", err)
	}

	if err := repo.IncrementUsage(ctx, got.ID); err != nil {
		t.Fatalf("IncrementUsage() error = %v", err)
	}
	if err := repo.IncrementUsage(ctx, got.ID); !errors.Is(err, ErrCouponExhausted) {
		t.Errorf("IncrementUsage() at limit error = %v, want ErrCouponExhausted", err)
	}

	codes, err := repo.Codes(ctx)
	if err != nil || len(codes) != 1 || codes[0] != "SAVE10" {
		t.Errorf("Codes() = %v, %v", codes, err)
	}
	if n, err := repo.Count(ctx); err != nil || n != 1 {
		t.Errorf("Count() = %d, %v", n, err)
	}
}

func TestArticleRepository(t *testing.T) {
	db := testutil.DB(t)
	users := NewUserRepository(db)
	repo := NewArticleRepository(db)
	ctx := context.Background()

	author := &models.User{Username: "coach", Email: "coach@example.com", PasswordHash: "x", FirstName: "Sam", LastName: "Lee", IsAdmin: true}
	if err := users.Create(ctx, author); err != nil {
		t.Fatalf("create author: %v", err)
	}

	now := time.Now()
	published := &models.Article{Title: "Deadlift form", Content: "...", AuthorID: author.ID, Category: "training", Tags: []string{"strength"}, Published: true, PublishDate: &now}
	draft := &models.Article{Title: "Draft", Content: "...", AuthorID: author.ID, Category: "nutrition"}
	for _, a := range []*models.Article{published, draft} {
		if err := repo.Create(ctx, a); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	list, err := repo.List(ctx, models.ArticleFilter{OnlyPublished: true})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 || list[0].Title != "Deadlift form" {
		t.Fatalf("published list = %+v", list)
	}
	if list[0].Author == nil || list[0].Author.Username != "coach" {
		t.Errorf("author not preloaded: %+v", list[0].Author)
	}
	if len(list[0].Tags) != 1 || list[0].Tags[0] != "strength" {
		t.Errorf("tags = %v", list[0].Tags)
	}

	all, _ := repo.List(ctx, models.ArticleFilter{})
	if len(all) != 2 {
		t.Errorf("unfiltered list length = %d, want 2", len(all))
	}

	draft.Published = true
	draft.PublishDate = &now
	if err := repo.Update(ctx, draft); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, _ := repo.GetByID(ctx, draft.ID)
	if !got.Published || got.PublishDate == nil {
		t.Errorf("update not persisted: %+v", got)
	}

	if err := repo.Delete(ctx, draft.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(ctx, draft.ID); !errors.Is(err, ErrArticleNotFound) {
		t.Errorf("GetByID after delete error = %v", err)
	}
}
