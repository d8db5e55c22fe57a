package capability

import (
	"testing"
	"time"
)

func checkerFor(available ...string) ToolChecker {
	set := make(map[string]struct{}, len(available))
	for _, name := range available {
		set[name] = struct{}{}
	}
	return func(name string) bool {
		_, ok := set[name]
		return ok
	}
}

func TestTool_Creation(t *testing.T) {
	tool := NewTool("clippy", true)
	if tool.ToolName != "clippy" {
		t.Fatalf("expected clippy, got %s", tool.ToolName)
	}
	if !tool.Required {
		t.Fatal("expected required")
	}
	if len(tool.Alternatives) != 0 {
		t.Fatalf("expected no alternatives, got %d", len(tool.Alternatives))
	}
	if tool.Permissions.FilesystemAccess || tool.Permissions.NetworkAccess {
		t.Fatal("expected deny-by-default permissions")
	}
	if tool.IsExpired() {
		t.Fatal("fresh tool should not be expired")
	}
}

func TestTool_SatisfactionIsOrOverPrimaryAndAlternatives(t *testing.T) {
	tool := NewTool("a", false).WithAlternatives("b", "c")

	cases := []struct {
		name      string
		available []string
		want      bool
	}{
		{"primary", []string{"a"}, true},
		{"first alternative", []string{"b"}, true},
		{"second alternative", []string{"c"}, true},
		{"none", []string{"x"}, false},
		{"empty", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tool.IsSatisfied(checkerFor(tc.available...)); got != tc.want {
				t.Fatalf("IsSatisfied = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTool_ExpiredNeverSatisfied(t *testing.T) {
	tool := NewTool("clippy", true).WithExpiration(Expiration{
		ExpiresAt: time.Now().Add(-time.Hour).Unix(),
	})
	if !tool.IsExpired() {
		t.Fatal("expected expired")
	}
	if tool.IsSatisfied(func(string) bool { return true }) {
		t.Fatal("expired tool must not be satisfied")
	}

	// Zero ExpiresAt means no expiry, not expired-since-epoch.
	eternal := ToolCapability{ToolName: "clippy"}
	if eternal.IsExpired() {
		t.Fatal("zero expiry must not count as expired")
	}
}

func TestTool_RevokedNeverSatisfied(t *testing.T) {
	tool := NewTool("clippy", true)
	tool.Revoke("compromised key", "security-team")

	if !tool.IsRevoked() {
		t.Fatal("expected revoked")
	}
	if tool.Expiration.RevocationReason != "compromised key" {
		t.Fatalf("unexpected reason %q", tool.Expiration.RevocationReason)
	}
	if tool.Expiration.RevokedBy != "security-team" {
		t.Fatalf("unexpected revoker %q", tool.Expiration.RevokedBy)
	}
	if tool.Expiration.RevokedAt == 0 {
		t.Fatal("expected revocation timestamp")
	}
	if tool.IsSatisfied(func(string) bool { return true }) {
		t.Fatal("revoked tool must not be satisfied")
	}
}

func TestTool_HasPermission(t *testing.T) {
	perms := DefaultPermissions()
	perms.NetworkAccess = true
	perms.ProcessSpawn = true
	tool := NewSecureTool("scanner", true, perms, DefaultExpiration())

	if !tool.HasPermission(PermissionNetworkAccess) {
		t.Fatal("expected network access")
	}
	if !tool.HasPermission(PermissionProcessSpawn) {
		t.Fatal("expected process spawn")
	}
	if tool.HasPermission(PermissionFilesystemAccess) {
		t.Fatal("filesystem access should be denied")
	}
	if tool.HasPermission("teleport") {
		t.Fatal("unknown permission should be denied")
	}
}

func TestTool_BuildersReturnCopies(t *testing.T) {
	base := NewTool("rustfmt", false)
	withAlts := base.WithAlternatives("cargo-fmt")

	if len(base.Alternatives) != 0 {
		t.Fatal("base tool mutated by WithAlternatives")
	}
	if len(withAlts.Alternatives) != 1 {
		t.Fatalf("expected 1 alternative, got %d", len(withAlts.Alternatives))
	}
}

func TestTool_Report(t *testing.T) {
	tool := NewTool("clippy", true)
	report := tool.Report()

	if report.ToolName != "clippy" {
		t.Fatalf("expected clippy, got %s", report.ToolName)
	}
	if report.HasAttestation {
		t.Fatal("expected no attestation")
	}
	if report.AttestationVerified {
		t.Fatal("unattested tool must not verify")
	}
	if report.IsExpired || report.IsRevoked {
		t.Fatal("fresh tool should be neither expired nor revoked")
	}
}
