package guard

import (
	"net/http"
	"testing"

	"github.com/veluxe-market/internal/constants"
)

func TestRequireRoleUnauthenticated(t *testing.T) {
	decision := RequireRole(AuthContext{}, constants.RoleBroker)
	if decision.Allowed {
		t.Fatal("expected deny for unauthenticated context")
	}
	if decision.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", decision.Status)
	}
}

func TestRequireRoleMembership(t *testing.T) {
	cases := []struct {
		name    string
		role    string
		allowed []string
		want    bool
	}{
		{"user_denied_broker_only", constants.RoleUser, []string{constants.RoleBroker}, false},
		{"seller_denied_broker_only", constants.RoleSeller, []string{constants.RoleBroker}, false},
		{"broker_allowed_broker_only", constants.RoleBroker, []string{constants.RoleBroker}, true},
		{"broker_denied_seller_only", constants.RoleBroker, []string{constants.RoleSeller}, false},
		{"seller_allowed_in_pair", constants.RoleSeller, []string{constants.RoleSeller, constants.RoleBroker}, true},
		{"admin_bypasses_any_set", constants.RoleAdmin, []string{constants.RoleSeller}, true},
		{"role_matching_case_insensitive", "Broker", []string{constants.RoleBroker}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := AuthContext{Authenticated: true, UserID: 1, Role: tc.role}
			decision := RequireRole(ctx, tc.allowed...)
			if decision.Allowed != tc.want {
				t.Fatalf("role %s allowing %v: expected allowed=%v, got %+v", tc.role, tc.allowed, tc.want, decision)
			}
			if !tc.want && decision.Status != http.StatusForbidden {
				t.Fatalf("expected 403, got %d", decision.Status)
			}
		})
	}
}

func TestRequireRoleUnknownRequirement(t *testing.T) {
	ctx := AuthContext{Authenticated: true, UserID: 1, Role: constants.RoleBroker}
	decision := RequireRole(ctx, "superuser")
	if decision.Allowed {
		t.Fatal("expected deny for unknown role requirement")
	}
}

func TestRequireAdmin(t *testing.T) {
	broker := AuthContext{Authenticated: true, UserID: 1, Role: constants.RoleBroker}
	if decision := RequireAdmin(broker); decision.Allowed {
		t.Fatal("expected broker denied admin access")
	}

	admin := AuthContext{Authenticated: true, UserID: 2, Role: constants.RoleAdmin}
	if decision := RequireAdmin(admin); !decision.Allowed {
		t.Fatalf("expected admin allowed, got %+v", decision)
	}
}

func TestRequireOwnership(t *testing.T) {
	owner := AuthContext{Authenticated: true, UserID: 7, Role: constants.RoleSeller, WalletAddress: "0xabcdef0123456789abcdef0123456789abcdef01"}

	if decision := RequireOwnership(owner, 7, ""); !decision.Allowed {
		t.Fatalf("expected owner by user id allowed, got %+v", decision)
	}
	if decision := RequireOwnership(owner, 0, "0xABCDEF0123456789abcdef0123456789abcdef01"); !decision.Allowed {
		t.Fatalf("expected owner by wallet allowed (case-insensitive), got %+v", decision)
	}
	if decision := RequireOwnership(owner, 8, "0x9999999999999999999999999999999999999999"); decision.Allowed {
		t.Fatal("expected non-owner denied")
	}

	admin := AuthContext{Authenticated: true, UserID: 1, Role: constants.RoleAdmin}
	if decision := RequireOwnership(admin, 8, ""); !decision.Allowed {
		t.Fatal("expected admin to bypass ownership check")
	}
}

func TestRequireBrokerOwnership(t *testing.T) {
	broker := AuthContext{Authenticated: true, UserID: 3, Role: constants.RoleBroker, BrokerID: 11}
	if decision := RequireBrokerOwnership(broker, 11); !decision.Allowed {
		t.Fatalf("expected broker allowed for own resource, got %+v", decision)
	}
	if decision := RequireBrokerOwnership(broker, 12); decision.Allowed {
		t.Fatal("expected broker denied for other broker's resource")
	}
	if decision := RequireBrokerOwnership(broker, 12); decision.Reason == "" {
		t.Fatal("expected deny reason to be set")
	}
}
