package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// GroupService implements the Connect GroupService
type GroupService struct {
	apiconnect.UnimplementedGroupServiceHandler
	store    storage.GroupStore
	resolver IdentifierResolver
	query    *ledger.Query
	logger   *slog.Logger
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.GroupStore, resolver IdentifierResolver, query *ledger.Query, logger *slog.Logger) *GroupService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GroupService{store: store, resolver: resolver, query: query, logger: logger}
}

// CreateGroup creates a new group. Members are resolved to user IDs.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	s.logger.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	identifiers := dedupe(req.Msg.Members)
	members, err := s.resolver.ResolveAll(ctx, identifiers)
	if err != nil {
		s.logger.Warn("CreateGroup failed to resolve members", "error", err)
		return nil, toConnectError(err)
	}

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		name = generateGroupName(identifiers)
	}

	// Create group model
	group := &models.Group{
		Name:    name,
		Members: dedupe(members),
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		s.logger.Error("CreateGroup failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Group created", "group_id", group.ID)

	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	s.logger.Info("GetGroup request received", "group_id", req.Msg.GroupId)

	group, err := s.store.GetGroup(ctx, req.Msg.GroupId)
	if err != nil {
		s.logger.Error("GetGroup failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("GetGroup successful", "group_id", group.ID, "name", group.Name)

	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// ListGroups retrieves all groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	s.logger.Info("ListGroups request received")

	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		s.logger.Error("ListGroups failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	apiGroups := make([]*api.Group, len(groups))
	for i, group := range groups {
		apiGroups[i] = toAPIGroup(group)
	}

	s.logger.Info("ListGroups successful", "count", len(groups))

	return connect.NewResponse(&api.ListGroupsResponse{Groups: apiGroups}), nil
}

// GetGroupBalances reports each member's net position from the balances
// among the group and a minimal set of transfers that settles them.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	groupID := req.Msg.GroupId
	s.logger.Info("GetGroupBalances request received", "group_id", groupID)

	if groupID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("group_id required"))
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		s.logger.Error("GetGroupBalances failed - group not found", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}

	balances, err := s.query.Among(ctx, group.Members)
	if err != nil {
		s.logger.Error("GetGroupBalances failed - could not list balances", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}

	memberBalances, debtEdges := calculator.SimplifyDebts(group.Members, balances)

	s.logger.Info("GetGroupBalances successful",
		"group_id", groupID,
		"balances_count", len(balances),
		"members_count", len(memberBalances),
		"debts_count", len(debtEdges),
	)

	return connect.NewResponse(&api.GetGroupBalancesResponse{
		MemberBalances: toAPIMemberBalances(memberBalances),
		DebtMatrix:     toAPIDebts(debtEdges),
	}), nil
}

// generateGroupName creates a name from the member identifiers as given.
func generateGroupName(members []string) string {
	if len(members) == 0 {
		return fmt.Sprintf("Group - %s", time.Now().Format("Jan 2, 2006"))
	}
	if len(members) <= 3 {
		return fmt.Sprintf("Group with %s", strings.Join(members, ", "))
	}
	return fmt.Sprintf("Group with %s and %d others",
		strings.Join(members[:2], ", "),
		len(members)-2,
	)
}

// dedupe drops repeated values, keeping the first occurrence.
func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
