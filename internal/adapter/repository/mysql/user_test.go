package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "loanledger/internal/domain/user"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openUserTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func TestUserCreateAndGetByUID(t *testing.T) {
	db := openUserTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &domain.User{
		UID:       "uid-1",
		Email:     "one@example.com",
		Name:      "One",
		PhotoURL:  "https://example.com/1.png",
		IsAdmin:   true,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByUID(ctx, "uid-1")
	if err != nil {
		t.Fatalf("GetByUID: %v", err)
	}
	if got.Email != u.Email || !got.IsAdmin {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestUserGetByUID_NotFound(t *testing.T) {
	db := openUserTestDB(t)
	repo := NewUserRepository(db)

	_, err := repo.GetByUID(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUserList(t *testing.T) {
	db := openUserTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	for _, uid := range []string{"a", "b", "c"} {
		if err := repo.Create(ctx, &domain.User{UID: uid, Email: uid + "@example.com"}); err != nil {
			t.Fatalf("Create(%s): %v", uid, err)
		}
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("List = %d users, want 3", len(got))
	}
}
