package service

import (
	"context"
	"strings"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

func TestCreateGroup(t *testing.T) {
	c, cleanup := setupTestServer(t, false)
	defer cleanup()

	alice := registerUser(t, c, "Alice", "alice@example.com")
	bob := registerUser(t, c, "Bob", "")

	resp, err := c.group.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{
		Name:    "Roommates",
		Members: []string{"alice@example.com", "Bob", bob},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	group := resp.Msg.Group
	if group.Id == "" {
		t.Error("expected group ID to be set")
	}
	if group.Name != "Roommates" {
		t.Errorf("expected name 'Roommates', got '%s'", group.Name)
	}
	// "Bob" and Bob's ID resolve to the same member
	if len(group.Members) != 2 || group.Members[0] != alice || group.Members[1] != bob {
		t.Errorf("expected members [%s %s], got %v", alice, bob, group.Members)
	}
	if group.CreatedAt == 0 {
		t.Error("expected created_at to be set")
	}
}

func TestCreateGroup_GeneratedName(t *testing.T) {
	c, cleanup := setupTestServer(t, false)
	defer cleanup()

	registerUser(t, c, "Alice", "")
	registerUser(t, c, "Bob", "")

	resp, err := c.group.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{
		Members: []string{"Alice", "Bob"},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if resp.Msg.Group.Name != "Group with Alice, Bob" {
		t.Errorf("expected generated name, got '%s'", resp.Msg.Group.Name)
	}
}

func TestCreateGroup_UnknownMember(t *testing.T) {
	c, cleanup := setupTestServer(t, false)
	defer cleanup()

	_, err := c.group.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{
		Name:    "Ghosts",
		Members: []string{"Casper"},
	}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestGetGroup(t *testing.T) {
	c, cleanup := setupTestServer(t, false)
	defer cleanup()
	ctx := context.Background()

	registerUser(t, c, "Alice", "")

	createResp, err := c.group.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{
		Name:    "Test Group",
		Members: []string{"Alice"},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	groupID := createResp.Msg.Group.Id

	getResp, err := c.group.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupId: groupID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}

	if getResp.Msg.Group.Id != groupID {
		t.Errorf("expected ID %s, got %s", groupID, getResp.Msg.Group.Id)
	}
	if getResp.Msg.Group.Name != "Test Group" {
		t.Errorf("expected name 'Test Group', got '%s'", getResp.Msg.Group.Name)
	}
	if len(getResp.Msg.Group.Members) != 1 {
		t.Errorf("expected 1 member, got %d", len(getResp.Msg.Group.Members))
	}
}

func TestGetGroup_NotFound(t *testing.T) {
	c, cleanup := setupTestServer(t, false)
	defer cleanup()

	_, err := c.group.GetGroup(context.Background(), connect.NewRequest(&api.GetGroupRequest{GroupId: "non-existent-id"}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestListGroups(t *testing.T) {
	c, cleanup := setupTestServer(t, false)
	defer cleanup()
	ctx := context.Background()

	registerUser(t, c, "Alice", "")
	for _, name := range []string{"Group 1", "Group 2", "Group 3"} {
		if _, err := c.group.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{
			Name:    name,
			Members: []string{"Alice"},
		})); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
	}

	resp, err := c.group.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(resp.Msg.Groups) != 3 {
		t.Errorf("expected 3 groups, got %d", len(resp.Msg.Groups))
	}
}

func TestListGroups_Empty(t *testing.T) {
	c, cleanup := setupTestServer(t, false)
	defer cleanup()

	resp, err := c.group.ListGroups(context.Background(), connect.NewRequest(&api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(resp.Msg.Groups) != 0 {
		t.Errorf("expected 0 groups, got %d", len(resp.Msg.Groups))
	}
}

func TestGetGroupBalances(t *testing.T) {
	c, cleanup := setupTestServer(t, false)
	defer cleanup()
	ctx := context.Background()

	alice := registerUser(t, c, "Alice", "")
	bob := registerUser(t, c, "Bob", "")
	carol := registerUser(t, c, "Carol", "")
	registerUser(t, c, "Outsider", "")

	// Bob owes Alice 10, Carol owes Bob 10: Carol should pay Alice directly
	expenses := []*api.RecordExpenseRequest{
		{PaidBy: "Alice", Amount: d("10"), SplitType: "EXACT", Splits: []api.Split{{UserId: "Bob", Amount: d("10")}}},
		{PaidBy: "Bob", Amount: d("10"), SplitType: "EXACT", Splits: []api.Split{{UserId: "Carol", Amount: d("10")}}},
		{PaidBy: "Alice", Amount: d("7"), SplitType: "EXACT", Splits: []api.Split{{UserId: "Outsider", Amount: d("7")}}},
	}
	for _, req := range expenses {
		if _, err := c.expense.RecordExpense(ctx, connect.NewRequest(req)); err != nil {
			t.Fatalf("RecordExpense failed: %v", err)
		}
	}

	createResp, err := c.group.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{
		Name:    "Trip",
		Members: []string{alice, bob, carol},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	resp, err := c.group.GetGroupBalances(ctx, connect.NewRequest(&api.GetGroupBalancesRequest{
		GroupId: createResp.Msg.Group.Id,
	}))
	if err != nil {
		t.Fatalf("GetGroupBalances failed: %v", err)
	}

	net := make(map[string]string)
	for _, mb := range resp.Msg.MemberBalances {
		net[mb.UserId] = mb.NetBalance.String()
	}
	// The Outsider debt is outside the group
	want := map[string]string{alice: "10", bob: "0", carol: "-10"}
	for id, w := range want {
		if net[id] != w {
			t.Errorf("net balance for %s: expected %s, got %s", id, w, net[id])
		}
	}

	if len(resp.Msg.DebtMatrix) != 1 {
		t.Fatalf("expected 1 simplified debt, got %d: %+v", len(resp.Msg.DebtMatrix), resp.Msg.DebtMatrix)
	}
	edge := resp.Msg.DebtMatrix[0]
	if edge.From != carol || edge.To != alice || !edge.Amount.Equal(d("10")) {
		t.Errorf("expected Carol to pay Alice 10, got %+v", edge)
	}
}

func TestGetGroupBalances_Errors(t *testing.T) {
	c, cleanup := setupTestServer(t, false)
	defer cleanup()

	_, err := c.group.GetGroupBalances(context.Background(), connect.NewRequest(&api.GetGroupBalancesRequest{}))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = c.group.GetGroupBalances(context.Background(), connect.NewRequest(&api.GetGroupBalancesRequest{GroupId: "missing"}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestGenerateGroupName(t *testing.T) {
	tests := []struct {
		members []string
		want    string
	}{
		{[]string{"Alice"}, "Group with Alice"},
		{[]string{"Alice", "Bob", "Carol"}, "Group with Alice, Bob, Carol"},
		{[]string{"Alice", "Bob", "Carol", "Dan", "Eve"}, "Group with Alice, Bob and 3 others"},
	}
	for _, tt := range tests {
		if got := generateGroupName(tt.members); got != tt.want {
			t.Errorf("generateGroupName(%v) = %q, want %q", tt.members, got, tt.want)
		}
	}

	if got := generateGroupName(nil); !strings.HasPrefix(got, "Group - ") {
		t.Errorf("expected dated name, got %q", got)
	}
}
