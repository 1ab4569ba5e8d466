package userbus_test

import (
	"context"
	"errors"
	"net/mail"
	"testing"

	"github.com/google/uuid"
	"github.com/hexalytics/portal/business/domain/userbus"
	"github.com/hexalytics/portal/business/sdk/order"
	"github.com/hexalytics/portal/business/sdk/page"
	"github.com/hexalytics/portal/business/sdk/sqldb"
	"github.com/hexalytics/portal/business/types/name"
	"github.com/hexalytics/portal/business/types/password"
	"github.com/hexalytics/portal/business/types/role"
	"golang.org/x/crypto/bcrypt"
)

// fakeStore keeps users in memory and enforces the unique email rule.
type fakeStore struct {
	users map[uuid.UUID]userbus.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[uuid.UUID]userbus.User)}
}

func (s *fakeStore) NewWithTx(tx sqldb.CommitRollbacker) (userbus.Storer, error) {
	return s, nil
}

func (s *fakeStore) Create(ctx context.Context, usr userbus.User) error {
	for _, existing := range s.users {
		if existing.Email.Address == usr.Email.Address {
			return userbus.ErrUniqueEmail
		}
	}
	s.users[usr.ID] = usr
	return nil
}

func (s *fakeStore) Update(ctx context.Context, usr userbus.User) error {
	if _, exists := s.users[usr.ID]; !exists {
		return userbus.ErrNotFound
	}
	s.users[usr.ID] = usr
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, usr userbus.User) error {
	delete(s.users, usr.ID)
	return nil
}

func (s *fakeStore) Query(ctx context.Context, filter userbus.QueryFilter, orderBy order.By, page page.Page) ([]userbus.User, error) {
	usrs := make([]userbus.User, 0, len(s.users))
	for _, usr := range s.users {
		usrs = append(usrs, usr)
	}
	return usrs, nil
}

func (s *fakeStore) Count(ctx context.Context, filter userbus.QueryFilter) (int, error) {
	return len(s.users), nil
}

func (s *fakeStore) QueryByID(ctx context.Context, userID uuid.UUID) (userbus.User, error) {
	usr, exists := s.users[userID]
	if !exists {
		return userbus.User{}, userbus.ErrNotFound
	}
	return usr, nil
}

func (s *fakeStore) QueryByEmail(ctx context.Context, email mail.Address) (userbus.User, error) {
	for _, usr := range s.users {
		if usr.Email.Address == email.Address {
			return usr, nil
		}
	}
	return userbus.User{}, userbus.ErrNotFound
}

// =============================================================================

func newTestUser() userbus.NewUser {
	return userbus.NewUser{
		Name:     name.MustParse("Bill Kennedy"),
		Email:    mail.Address{Address: "bill@example.com"},
		Role:     role.User,
		Password: password.MustParse("gophers123"),
	}
}

func TestCreate(t *testing.T) {
	bus := userbus.NewCore(newFakeStore())
	ctx := context.Background()

	usr, err := bus.Create(ctx, newTestUser())
	if err != nil {
		t.Fatalf("create: %s", err)
	}

	if usr.ID == uuid.Nil {
		t.Error("user id was not assigned")
	}

	if !usr.Enabled {
		t.Error("new users should be enabled")
	}

	if err := bcrypt.CompareHashAndPassword(usr.PasswordHash, []byte("gophers123")); err != nil {
		t.Error("password hash does not match the password")
	}

	if _, err := bus.Create(ctx, newTestUser()); !errors.Is(err, userbus.ErrUniqueEmail) {
		t.Errorf("duplicate email: got %v, want ErrUniqueEmail", err)
	}
}

func TestAuthenticate(t *testing.T) {
	bus := userbus.NewCore(newFakeStore())
	ctx := context.Background()

	created, err := bus.Create(ctx, newTestUser())
	if err != nil {
		t.Fatalf("create: %s", err)
	}

	usr, err := bus.Authenticate(ctx, created.Email, []byte("gophers123"))
	if err != nil {
		t.Fatalf("authenticate: %s", err)
	}

	if usr.ID != created.ID {
		t.Errorf("got user %s, want %s", usr.ID, created.ID)
	}

	if _, err := bus.Authenticate(ctx, created.Email, []byte("wrongpass")); !errors.Is(err, userbus.ErrAuthenticationFailure) {
		t.Errorf("wrong password: got %v, want ErrAuthenticationFailure", err)
	}

	unknown := mail.Address{Address: "nobody@example.com"}
	if _, err := bus.Authenticate(ctx, unknown, []byte("gophers123")); !errors.Is(err, userbus.ErrAuthenticationFailure) {
		t.Errorf("unknown email: got %v, want ErrAuthenticationFailure", err)
	}
}

func TestUpdate(t *testing.T) {
	bus := userbus.NewCore(newFakeStore())
	ctx := context.Background()

	usr, err := bus.Create(ctx, newTestUser())
	if err != nil {
		t.Fatalf("create: %s", err)
	}

	newName := name.MustParse("William Kennedy")
	disabled := false

	updated, err := bus.Update(ctx, usr, userbus.UpdateUser{
		Name:    &newName,
		Enabled: &disabled,
	})
	if err != nil {
		t.Fatalf("update: %s", err)
	}

	if !updated.Name.Equal(newName) {
		t.Errorf("name: got %s, want %s", updated.Name, newName)
	}

	if updated.Enabled {
		t.Error("user should be disabled")
	}

	if updated.UpdatedAt.Before(usr.UpdatedAt) {
		t.Error("UpdatedAt went backwards")
	}
}
