package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/crownfall/farm-coordinator/internal/repository"
	"github.com/crownfall/farm-coordinator/internal/security"
)

func newUserServiceForTest(t *testing.T) *UserService {
	t.Helper()
	store := newStoreForTest(t)
	jwt := security.NewJWTManager("farm-coordinator-test", "test-secret")
	return NewUserService(store, nil, jwt, time.Hour)
}

func TestCreateUserAndAuthenticate(t *testing.T) {
	users := newUserServiceForTest(t)
	ctx := context.Background()

	created, err := users.CreateUser(ctx, CreateUserInput{Username: "alice", Password: "s3cret"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.Password == "s3cret" {
		t.Fatal("expected password to be hashed")
	}

	token, err := users.Authenticate(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if token.AccessToken == "" || token.TokenType != "bearer" {
		t.Fatalf("unexpected token result: %+v", token)
	}

	user, err := users.VerifyToken(ctx, token.AccessToken)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if user.ID != created.ID {
		t.Fatalf("expected user %s, got %s", created.ID, user.ID)
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	users := newUserServiceForTest(t)
	ctx := context.Background()

	if _, err := users.CreateUser(ctx, CreateUserInput{Username: "alice", Password: "s3cret"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := users.Authenticate(ctx, "alice", "wrong"); !errors.Is(err, ErrIncorrectPassword) {
		t.Fatalf("expected ErrIncorrectPassword, got %v", err)
	}
	if _, err := users.Authenticate(ctx, "nobody", "s3cret"); !errors.Is(err, ErrIncorrectPassword) {
		t.Fatalf("expected ErrIncorrectPassword for unknown user, got %v", err)
	}
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	users := newUserServiceForTest(t)
	ctx := context.Background()

	if _, err := users.CreateUser(ctx, CreateUserInput{Username: "alice", Password: "x"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	_, err := users.CreateUser(ctx, CreateUserInput{Username: "alice", Password: "y"})
	if !errors.Is(err, repository.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestVerifyTokenGarbage(t *testing.T) {
	users := newUserServiceForTest(t)

	if _, err := users.VerifyToken(context.Background(), "not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestUpdateUserDisables(t *testing.T) {
	users := newUserServiceForTest(t)
	ctx := context.Background()

	created, err := users.CreateUser(ctx, CreateUserInput{Username: "alice", Password: "x"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	disabled := false
	if err := users.UpdateUser(ctx, created.ID, UpdateUserInput{Status: &disabled}); err != nil {
		t.Fatalf("update user: %v", err)
	}

	got, err := users.GetUser(ctx, created.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Status {
		t.Fatal("expected user disabled")
	}
}

func TestGetUserReportsSpansClients(t *testing.T) {
	store := newStoreForTest(t)
	jwt := security.NewJWTManager("farm-coordinator-test", "test-secret")
	users := NewUserService(store, nil, jwt, time.Hour)
	clients := NewClientService(store, nil, testFarmCooldown, testFarmWindow)
	reports := NewReportService(store, nil)
	ctx := context.Background()

	owner, err := users.CreateUser(ctx, CreateUserInput{Username: "owner", Password: "pw"})
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}
	other, err := users.CreateUser(ctx, CreateUserInput{Username: "other", Password: "pw"})
	if err != nil {
		t.Fatalf("create other: %v", err)
	}

	newClient := func(name string, userID uuid.UUID) uuid.UUID {
		client, err := clients.CreateClient(ctx, CreateClientInput{
			IPAddress: "127.0.0.1", Name: name, UserID: userID,
		})
		if err != nil {
			t.Fatalf("create client %s: %v", name, err)
		}
		return client.ID
	}
	rigA := newClient("rig-a", owner.ID)
	rigB := newClient("rig-b", owner.ID)
	foreign := newClient("rig-c", other.ID)

	for _, clientID := range []uuid.UUID{rigA, rigA, rigB, foreign} {
		if _, err := reports.CreateReport(ctx, clientID, CreateReportInput{Error: "crash"}); err != nil {
			t.Fatalf("create report: %v", err)
		}
	}

	page, err := users.GetUserReports(ctx, owner.ID, 2, 0)
	if err != nil {
		t.Fatalf("get user reports: %v", err)
	}
	if page.Total != 3 {
		t.Fatalf("expected 3 reports across both rigs, got %d", page.Total)
	}
	if len(page.Reports) != 2 || page.Pages != 2 {
		t.Fatalf("expected first page of 2 with 2 pages, got %d/%d", len(page.Reports), page.Pages)
	}
	for _, rep := range page.Reports {
		if rep.ClientID == foreign {
			t.Fatal("report from another owner's client leaked into the view")
		}
	}

	if _, err := users.GetUserReports(ctx, uuid.New(), 10, 0); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
