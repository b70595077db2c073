package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

func TestRegister_WithoutPassword(t *testing.T) {
	c, cleanup := setupTestServer(t, false)
	defer cleanup()

	resp, err := c.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		DisplayName: "Alice",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if resp.Msg.User.Id == "" {
		t.Error("expected user ID to be set")
	}
	if resp.Msg.Token != "" {
		t.Error("expected no token for a user without a password")
	}
}

func TestRegisterAndLogin(t *testing.T) {
	c, cleanup := setupTestServer(t, false)
	defer cleanup()
	ctx := context.Background()

	regResp, err := c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       "alice@example.com",
		DisplayName: "Alice",
		Password:    "correct-horse",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if regResp.Msg.Token == "" {
		t.Fatal("expected a token")
	}

	loginResp, err := c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if loginResp.Msg.User.Id != regResp.Msg.User.Id {
		t.Errorf("expected user %s, got %s", regResp.Msg.User.Id, loginResp.Msg.User.Id)
	}

	claims, err := c.jwt.Validate(loginResp.Msg.Token)
	if err != nil {
		t.Fatalf("token should validate: %v", err)
	}
	if claims.UserID != regResp.Msg.User.Id {
		t.Errorf("expected claims for %s, got %s", regResp.Msg.User.Id, claims.UserID)
	}

	_, err = c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	}))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestRegister_Errors(t *testing.T) {
	c, cleanup := setupTestServer(t, false)
	defer cleanup()

	registerUser(t, c, "Alice", "alice@example.com")

	tests := []struct {
		name string
		req  *api.RegisterRequest
		want connect.Code
	}{
		{"weak password", &api.RegisterRequest{Email: "bob@example.com", DisplayName: "Bob", Password: "short"}, connect.CodeInvalidArgument},
		{"password without email", &api.RegisterRequest{DisplayName: "Bob", Password: "long-enough"}, connect.CodeInvalidArgument},
		{"missing display name", &api.RegisterRequest{Email: "bob@example.com"}, connect.CodeInvalidArgument},
		{"duplicate email", &api.RegisterRequest{Email: "alice@example.com", DisplayName: "Other Alice"}, connect.CodeAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.auth.Register(context.Background(), connect.NewRequest(tt.req))
			assertCode(t, err, tt.want)
		})
	}
}

func TestGetCurrentUser(t *testing.T) {
	c, cleanup := setupTestServer(t, false)
	defer cleanup()
	ctx := context.Background()

	_, err := c.auth.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)

	regResp, err := c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       "alice@example.com",
		DisplayName: "Alice",
		Password:    "correct-horse",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	req := connect.NewRequest(&api.GetCurrentUserRequest{})
	req.Header().Set("Authorization", "Bearer "+regResp.Msg.Token)
	resp, err := c.auth.GetCurrentUser(ctx, req)
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if resp.Msg.User.DisplayName != "Alice" || resp.Msg.User.Email != "alice@example.com" {
		t.Errorf("unexpected user: %+v", resp.Msg.User)
	}
}

func TestRequireAuth(t *testing.T) {
	c, cleanup := setupTestServer(t, true)
	defer cleanup()
	ctx := context.Background()

	_, err := c.balance.GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{User: "Alice"}))
	assertCode(t, err, connect.CodeUnauthenticated)

	regResp, err := c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       "alice@example.com",
		DisplayName: "Alice",
		Password:    "correct-horse",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	req := connect.NewRequest(&api.GetBalancesRequest{User: "Alice"})
	req.Header().Set("Authorization", "Bearer "+regResp.Msg.Token)
	resp, err := c.balance.GetBalances(ctx, req)
	if err != nil {
		t.Fatalf("GetBalances with token failed: %v", err)
	}
	if resp.Msg.UserId != regResp.Msg.User.Id {
		t.Errorf("expected user %s, got %s", regResp.Msg.User.Id, resp.Msg.UserId)
	}
}
