package capability

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"
)

func testKey(t *testing.T) ed25519.PrivateKey {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	return priv
}

func TestHash_StableAndFieldSensitive(t *testing.T) {
	tool := NewTool("clippy", true).WithAlternatives("cargo-clippy")

	if tool.Hash() != tool.Hash() {
		t.Fatal("hash must be deterministic")
	}

	renamed := tool
	renamed.ToolName = "pylint"
	if renamed.Hash() == tool.Hash() {
		t.Fatal("hash must change with the tool name")
	}

	relaxed := tool
	relaxed.Required = false
	if relaxed.Hash() == tool.Hash() {
		t.Fatal("hash must change with the required bit")
	}
}

func TestAttest_RoundTrip(t *testing.T) {
	priv := testKey(t)
	tool := NewTool("clippy", true)

	att, err := tool.Attest(priv, "ci-attester")
	if err != nil {
		t.Fatal(err)
	}
	if att.Attester != "ci-attester" {
		t.Fatalf("expected ci-attester, got %s", att.Attester)
	}
	if att.Algorithm != AttestationAlgorithm {
		t.Fatalf("unexpected algorithm %s", att.Algorithm)
	}

	attested := tool.WithAttestation(att)
	if !attested.Verified {
		t.Fatal("WithAttestation should mark the tool verified")
	}
	if !attested.VerifyAttestation() {
		t.Fatal("freshly attested tool must verify")
	}
}

func TestVerifyAttestation_FailClosed(t *testing.T) {
	priv := testKey(t)
	tool := NewTool("clippy", true)
	att, err := tool.Attest(priv, "ci")
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name   string
		mutate func(*Attestation)
	}{
		{"tampered hash", func(a *Attestation) { a.CapabilityHash = "deadbeef" }},
		{"wrong algorithm", func(a *Attestation) { a.Algorithm = "SHA256-RSA" }},
		{"stale timestamp", func(a *Attestation) {
			a.Timestamp = time.Now().Add(-AttestationMaxAge - time.Hour).Unix()
		}},
		{"empty signature", func(a *Attestation) { a.Signature = "" }},
		{"garbage signature", func(a *Attestation) { a.Signature = "not-hex" }},
		{"empty public key", func(a *Attestation) { a.PublicKey = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bad := att
			tc.mutate(&bad)
			if tool.WithAttestation(bad).VerifyAttestation() {
				t.Fatal("expected verification failure")
			}
		})
	}
}

func TestVerifyAttestation_NoAttestation(t *testing.T) {
	if NewTool("clippy", true).VerifyAttestation() {
		t.Fatal("tool without attestation must not verify")
	}
}

func TestVerifyAttestation_DeclarationDrift(t *testing.T) {
	priv := testKey(t)
	tool := NewTool("clippy", true)
	att, err := tool.Attest(priv, "ci")
	if err != nil {
		t.Fatal(err)
	}

	// Changing the declaration after attestation invalidates the hash.
	drifted := tool.WithAlternatives("cargo-clippy").WithAttestation(att)
	if drifted.VerifyAttestation() {
		t.Fatal("attestation must not survive a declaration change")
	}
}

func TestCapabilities_VerifyAll(t *testing.T) {
	priv := testKey(t)

	attested := NewTool("clippy", true)
	att, err := attested.Attest(priv, "ci")
	if err != nil {
		t.Fatal(err)
	}
	attested = attested.WithAttestation(att)

	good := New("w1")
	good.StaticAnalysisTools = append(good.StaticAnalysisTools, attested)
	if !good.VerifyAll() {
		t.Fatal("fully attested set must verify")
	}

	mixed := good.Clone()
	mixed.SecurityScanningTools = append(mixed.SecurityScanningTools, NewTool("cargo-audit", false))
	if mixed.VerifyAll() {
		t.Fatal("an unattested tool must fail VerifyAll")
	}
}

func TestRegistry_FindVerified(t *testing.T) {
	priv := testKey(t)

	tool := NewTool("clippy", true)
	att, err := tool.Attest(priv, "ci")
	if err != nil {
		t.Fatal(err)
	}

	verified := New("verified-worker")
	verified.StaticAnalysisTools = append(verified.StaticAnalysisTools, tool.WithAttestation(att))

	reg := NewRegistry()
	reg.Register(verified)
	reg.Register(New("plain-worker").WithStaticAnalysis("pylint", true))

	found := reg.FindVerified()
	if len(found) != 1 || found[0].ID != "verified-worker" {
		t.Fatalf("expected [verified-worker], got %d matches", len(found))
	}

	results := reg.VerifyAllWorkers()
	if !results["verified-worker"] || results["plain-worker"] {
		t.Fatalf("unexpected verification map: %v", results)
	}
}
