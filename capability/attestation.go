package capability

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Hash computes the SHA-256 digest over the fields an attestation covers:
// the tool identity, its alternatives, permissions, and expiry. Any change
// to those fields invalidates an existing attestation.
func (t ToolCapability) Hash() string {
	h := sha256.New()
	h.Write([]byte(t.ToolName))
	h.Write([]byte(strconv.FormatBool(t.Required)))
	h.Write([]byte(strings.Join(t.Alternatives, ",")))
	p := t.Permissions
	h.Write([]byte(strconv.FormatBool(p.FilesystemAccess)))
	h.Write([]byte(strconv.FormatBool(p.NetworkAccess)))
	h.Write([]byte(strconv.FormatBool(p.ProcessSpawn)))
	h.Write([]byte(strconv.FormatBool(p.EnvAccess)))
	h.Write([]byte(strconv.FormatBool(p.SystemAccess)))
	h.Write([]byte(strconv.FormatUint(p.MemoryLimitMB, 10)))
	h.Write([]byte(strconv.FormatUint(uint64(p.CPULimitPercent), 10)))
	h.Write([]byte(strconv.FormatUint(p.TimeoutSeconds, 10)))
	h.Write([]byte(strconv.FormatInt(t.Expiration.ExpiresAt, 10)))
	return hex.EncodeToString(h.Sum(nil))
}

// Attest signs the capability hash with the attester's ed25519 key and
// returns the attestation. The capability itself is not modified; attach
// the result with WithAttestation.
func (t ToolCapability) Attest(priv ed25519.PrivateKey, attester string) (Attestation, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return Attestation{}, fmt.Errorf("attest %s: invalid private key size %d", t.ToolName, len(priv))
	}
	hash := t.Hash()
	sig := ed25519.Sign(priv, []byte(hash))
	pub := priv.Public().(ed25519.PublicKey)
	return Attestation{
		CapabilityHash: hash,
		Signature:      hex.EncodeToString(sig),
		PublicKey:      hex.EncodeToString(pub),
		Timestamp:      time.Now().Unix(),
		Algorithm:      AttestationAlgorithm,
		Attester:       attester,
	}, nil
}

// VerifyAttestation reports whether the capability carries a valid
// attestation: present, within AttestationMaxAge, using the expected
// algorithm, hash matching the current declaration, and signature checking
// out against the embedded public key. Fail-closed on any mismatch.
func (t ToolCapability) VerifyAttestation() bool {
	att := t.Attestation
	if att == nil {
		return false
	}
	if time.Now().Unix()-att.Timestamp > int64(AttestationMaxAge/time.Second) {
		return false
	}
	if att.Algorithm != AttestationAlgorithm {
		return false
	}
	if att.CapabilityHash != t.Hash() {
		return false
	}
	pub, err := hex.DecodeString(att.PublicKey)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}
	sig, err := hex.DecodeString(att.Signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), []byte(att.CapabilityHash), sig)
}
