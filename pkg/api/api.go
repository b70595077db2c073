// Package api defines the request and response messages of the
// splitledger.v1 RPC services. Messages travel as JSON; amounts are decimal
// strings so no precision is lost in transit.
package api

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// User is the public view of a registered user.
type User struct {
	Id          string `json:"id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName"`
	CreatedAt   int64  `json:"createdAt"`
}

type RegisterRequest struct {
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName"`

	// Password is optional. Users without one take part in expenses but
	// cannot log in.
	Password string `json:"password,omitempty"`
}

type RegisterResponse struct {
	User *User `json:"user"`

	// Token is set only when a password was given.
	Token string `json:"token,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}

// Split is one participant of an expense. UserId may be an ID, an email or
// a display name.
type Split struct {
	UserId  string          `json:"userId"`
	Amount  decimal.Decimal `json:"amount"`
	Percent decimal.Decimal `json:"percent"`
}

// UnmarshalJSON also accepts a bare identifier string, the short form for
// EQUAL splits.
func (s *Split) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '"' {
		*s = Split{}
		return json.Unmarshal(trimmed, &s.UserId)
	}
	type split Split
	var v split
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Split(v)
	return nil
}

type RecordExpenseRequest struct {
	PaidBy    string          `json:"paidBy"`
	Amount    decimal.Decimal `json:"amount"`
	SplitType string          `json:"splitType"`
	Splits    []Split         `json:"splits"`
}

// Share is what one participant owes the payer and what netting it did.
type Share struct {
	UserId  string          `json:"userId"`
	Amount  decimal.Decimal `json:"amount"`
	Outcome string          `json:"outcome"`
}

type RecordExpenseResponse struct {
	PayerId   string          `json:"payerId"`
	Shares    []*Share        `json:"shares"`
	Allocated decimal.Decimal `json:"allocated"`
	Diff      decimal.Decimal `json:"diff"`
}

// RecordPaymentRequest settles up: From paid To Amount.
type RecordPaymentRequest struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

type RecordPaymentResponse struct {
	Outcome string `json:"outcome"`
}

// Balance records that Debtor owes Creditor Amount.
type Balance struct {
	Id        string          `json:"id"`
	Debtor    string          `json:"debtor"`
	Creditor  string          `json:"creditor"`
	Amount    decimal.Decimal `json:"amount"`
	UpdatedAt int64           `json:"updatedAt"`
}

type GetBalancesRequest struct {
	// User may be an ID, an email or a display name.
	User string `json:"user"`
}

type GetBalancesResponse struct {
	UserId      string          `json:"userId"`
	Owes        []*Balance      `json:"owes"`
	OwedBy      []*Balance      `json:"owedBy"`
	TotalOwes   decimal.Decimal `json:"totalOwes"`
	TotalOwedBy decimal.Decimal `json:"totalOwedBy"`
	Net         decimal.Decimal `json:"net"`
}

type Group struct {
	Id        string   `json:"id"`
	Name      string   `json:"name"`
	Members   []string `json:"members"`
	CreatedAt int64    `json:"createdAt"`
}

type CreateGroupRequest struct {
	Name string `json:"name"`

	// Members are identifiers, resolved to user IDs on creation.
	Members []string `json:"members"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupId string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type GetGroupBalancesRequest struct {
	GroupId string `json:"groupId"`
}

type MemberBalance struct {
	UserId     string          `json:"userId"`
	NetBalance decimal.Decimal `json:"netBalance"`
	TotalOwes  decimal.Decimal `json:"totalOwes"`
	TotalOwed  decimal.Decimal `json:"totalOwed"`
}

type DebtEdge struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

type GetGroupBalancesResponse struct {
	MemberBalances []*MemberBalance `json:"memberBalances"`
	DebtMatrix     []*DebtEdge      `json:"debtMatrix"`
}
