package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/expense"
	"github.com/mmynk/splitledger/internal/identity"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

type testClients struct {
	auth    apiconnect.AuthServiceClient
	expense apiconnect.ExpenseServiceClient
	balance apiconnect.BalanceServiceClient
	group   apiconnect.GroupServiceClient
	jwt     *auth.JWTManager
}

// setupTestServer creates a test server with every service on a temp SQLite database.
// With requireAuth, ledger services reject calls without a valid token.
func setupTestServer(t *testing.T, requireAuth bool) (*testClients, func()) {
	t.Helper()

	// Create temp database
	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	resolver := identity.NewResolver(store, nil)
	query := ledger.NewQuery(store)
	orchestrator := expense.NewOrchestrator(resolver, ledger.NewEngine(store))

	authInterceptor := connect.WithInterceptors(middleware.OptionalAuth(jwtManager))
	if requireAuth {
		authInterceptor = connect.WithInterceptors(middleware.RequireAuth(jwtManager))
	}

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(
		NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, store, nil),
		connect.WithInterceptors(middleware.OptionalAuth(jwtManager)),
	))
	mux.Handle(apiconnect.NewExpenseServiceHandler(NewExpenseService(orchestrator, nil), authInterceptor))
	mux.Handle(apiconnect.NewBalanceServiceHandler(NewBalanceService(resolver, query, nil), authInterceptor))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(store, resolver, query, nil), authInterceptor))

	server := httptest.NewServer(mux)

	clients := &testClients{
		auth:    apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
		expense: apiconnect.NewExpenseServiceClient(http.DefaultClient, server.URL),
		balance: apiconnect.NewBalanceServiceClient(http.DefaultClient, server.URL),
		group:   apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL),
		jwt:     jwtManager,
	}

	cleanup := func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	}

	return clients, cleanup
}

// registerUser creates a user without credentials and returns its ID.
func registerUser(t *testing.T, c *testClients, displayName, email string) string {
	t.Helper()
	resp, err := c.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       email,
		DisplayName: displayName,
	}))
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", displayName, err)
	}
	return resp.Msg.User.Id
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("expected code %v, got %v (%v)", want, got, err)
	}
}
