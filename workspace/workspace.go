package workspace

import "time"

// AccountType is the caller's role within a workspace. The backend owns
// the value set; unknown values are passed through and logged rather
// than rejected, so a backend rollout of a new role does not break old
// console builds.
type AccountType string

const (
	AccountTypePrimaryOwner AccountType = "primaryOwner"
	AccountTypeOwner        AccountType = "owner"
	AccountTypeAdmin        AccountType = "admin"
	AccountTypeMember       AccountType = "member"
)

// Known reports whether t is one of the defined account types.
func (t AccountType) Known() bool {
	switch t {
	case AccountTypePrimaryOwner, AccountTypeOwner, AccountTypeAdmin, AccountTypeMember:
		return true
	}
	return false
}

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
)

// Workspace is a read-only snapshot from the backend. AccessStartDate
// and AccessEndDate bound the interval during which the workspace may
// be selected; either or both may be absent (no bound on that side).
type Workspace struct {
	WorkspaceID     string      `json:"workspaceId"`
	WorkspaceName   string      `json:"workspaceName"`
	AccountType     AccountType `json:"accountType"`
	Status          Status      `json:"status"`
	IsDefault       bool        `json:"isDefault"`
	AccessStartDate *time.Time  `json:"accessStartDate,omitempty"`
	AccessEndDate   *time.Time  `json:"accessEndDate,omitempty"`
}
