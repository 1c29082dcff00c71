// Package covenant computes the taproot locking scripts of the CAT20 token covenant.
// Nothing here touches the network: the same minter always yields the same token script.
package covenant

import (
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
)

// DefaultIssuerPubKey is the internal key every CAT20 contract output is tweaked from.
const DefaultIssuerPubKey = "0250929b74c1a04954b78b4b6035e97a5e078a5a0f28ec96d547bfee9ace803ac0"

// Artifact file names expected in an artifact directory.
const (
	TokenArtifactFile         = "cat20.json"
	BurnGuardArtifactFile     = "burnGuard.json"
	TransferGuardArtifactFile = "transferGuard.json"
)

// Artifacts bundles the compiled contracts the token covenant depends on.
type Artifacts struct {
	Token         Artifact
	BurnGuard     Artifact
	TransferGuard Artifact
}

// LoadArtifacts reads the three artifacts from dir.
func LoadArtifacts(dir string) (Artifacts, error) {
	var a Artifacts
	var err error
	if a.Token, err = LoadArtifact(filepath.Join(dir, TokenArtifactFile)); err != nil {
		return a, err
	}
	if a.BurnGuard, err = LoadArtifact(filepath.Join(dir, BurnGuardArtifactFile)); err != nil {
		return a, err
	}
	if a.TransferGuard, err = LoadArtifact(filepath.Join(dir, TransferGuardArtifactFile)); err != nil {
		return a, err
	}
	return a, nil
}

// Builder implements port.CovenantBuilder.
type Builder struct {
	internalKey *btcec.PublicKey
	token       Artifact
	guardsP2TR  []byte
}

// NewBuilder parses the issuer key and precomputes the guards output shared by every token.
func NewBuilder(issuerPubKeyHex string, artifacts Artifacts) (*Builder, error) {
	if issuerPubKeyHex == "" {
		issuerPubKeyHex = DefaultIssuerPubKey
	}
	raw, err := hex.DecodeString(issuerPubKeyHex)
	if err != nil {
		return nil, fmt.Errorf("issuer pubkey: %w", err)
	}
	key, err := btcec.ParsePubKey(raw)
	if err != nil {
		return nil, fmt.Errorf("issuer pubkey: %w", err)
	}

	burn, err := artifacts.BurnGuard.Instantiate(nil)
	if err != nil {
		return nil, err
	}
	transfer, err := artifacts.TransferGuard.Instantiate(nil)
	if err != nil {
		return nil, err
	}
	guards, err := TaprootLockingScript(key, burn, transfer)
	if err != nil {
		return nil, fmt.Errorf("guards output: %w", err)
	}

	return &Builder{internalKey: key, token: artifacts.Token, guardsP2TR: guards}, nil
}

// GuardsLockingScript returns the taproot output committing to the burn and transfer guards.
func (b *Builder) GuardsLockingScript() []byte {
	return append([]byte(nil), b.guardsP2TR...)
}

// TokenLockingScript returns the locking script of the token contract bound to the minter.
func (b *Builder) TokenLockingScript(minterLockingScript []byte) ([]byte, error) {
	if len(minterLockingScript) == 0 {
		return nil, fmt.Errorf("empty minter locking script")
	}
	script, err := b.token.Instantiate(map[string][]byte{
		"minterP2TR": minterLockingScript,
		"guardsP2TR": b.guardsP2TR,
	})
	if err != nil {
		return nil, err
	}
	return TaprootLockingScript(b.internalKey, script)
}

// TaprootLockingScript commits the leaf scripts under internalKey and returns the
// OP_1 <32-byte key> output script. A single leaf is its own root.
func TaprootLockingScript(internalKey *btcec.PublicKey, leaves ...[]byte) ([]byte, error) {
	if len(leaves) == 0 {
		return nil, fmt.Errorf("no tap leaves")
	}
	tapLeaves := make([]txscript.TapLeaf, 0, len(leaves))
	for _, l := range leaves {
		tapLeaves = append(tapLeaves, txscript.NewBaseTapLeaf(l))
	}
	tree := txscript.AssembleTaprootScriptTree(tapLeaves...)
	root := tree.RootNode.TapHash()

	outputKey := txscript.ComputeTaprootOutputKey(internalKey, root[:])
	return txscript.PayToTaprootScript(outputKey)
}
