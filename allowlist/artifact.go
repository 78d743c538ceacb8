package allowlist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Artifact is the emitted commitment document. All digests are hex strings
// with a 0x prefix; proof order is exactly generation order (leaf to root).
type Artifact struct {
	Root   string              `json:"root"`
	Leaves []string            `json:"leaves"`
	Proofs map[string][]string `json:"proofs"`

	// Attestation is present when the build was signed.
	Attestation *RootAttestation `json:"attestation,omitempty"`
}

// RootAttestation binds a signer to the committed root.
type RootAttestation struct {
	Signer    string `json:"signer"`
	Signature string `json:"signature"`
}

// Artifact renders the report into its serializable form. Proofs are keyed
// by the canonical checksummed address.
func (r *Report) Artifact() *Artifact {
	a := &Artifact{
		Root:   r.Root.Hex(),
		Leaves: make([]string, len(r.Entries)),
		Proofs: make(map[string][]string, len(r.Entries)),
	}
	for i, e := range r.Entries {
		a.Leaves[i] = e.Leaf.Hex()
		proof := make([]string, len(e.Proof))
		for j, sib := range e.Proof {
			proof[j] = sib.Hex()
		}
		a.Proofs[e.Display] = proof
	}
	return a
}

// WriteFile writes the artifact as indented JSON. The document is staged in
// a temp file beside the destination and renamed into place, so a failed
// write never leaves a partial artifact at path.
func (a *Artifact) WriteFile(path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("allowlist: encode artifact: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("allowlist: stage artifact: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("allowlist: write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("allowlist: close artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("allowlist: publish artifact: %w", err)
	}
	return nil
}
