package domain

import "time"

// AuditLog records one security-relevant event (sign-in attempt, workspace
// provisioning, organization creation). Append-only.
type AuditLog struct {
	ID        string
	OrgID     string
	UserID    string
	Action    string
	Resource  string
	IP        string
	Metadata  string // JSON blob; free-form per action
	CreatedAt time.Time
}

// Actions recorded by the auth core.
const (
	ActionLoginSuccess         = "login_success"
	ActionLoginFailure         = "login_failure"
	ActionWorkspaceProvisioned = "workspace_provisioned"
	ActionOrgCreated           = "org_created"
)
