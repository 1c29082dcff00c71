package covenant

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/btcsuite/btcd/txscript"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// placeholder matches an unresolved constructor parameter such as <minterP2TR>.
var placeholder = regexp.MustCompile(`<[A-Za-z_][A-Za-z0-9_.\[\]]*>`)

// Artifact is a compiled contract whose locking script still carries named
// constructor placeholders in its hex.
type Artifact struct {
	Contract string `json:"contract"`
	Hex      string `json:"hex"`
}

// LoadArtifact reads an artifact JSON file.
func LoadArtifact(path string) (Artifact, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("read artifact %s: %w", path, err)
	}
	var a Artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return Artifact{}, fmt.Errorf("decode artifact %s: %w", path, err)
	}
	if a.Hex == "" {
		return Artifact{}, fmt.Errorf("artifact %s has no hex", path)
	}
	if a.Contract == "" {
		a.Contract = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return a, nil
}

// Instantiate substitutes every <name> placeholder with the push-data encoding of
// args[name] and returns the resulting script. Unresolved placeholders are an error.
func (a Artifact) Instantiate(args map[string][]byte) ([]byte, error) {
	out := a.Hex
	for name, value := range args {
		push, err := txscript.NewScriptBuilder().AddData(value).Script()
		if err != nil {
			return nil, fmt.Errorf("%s: encode %s: %w", a.Contract, name, err)
		}
		out = strings.ReplaceAll(out, "<"+name+">", hex.EncodeToString(push))
	}

	if left := placeholder.FindString(out); left != "" {
		return nil, fmt.Errorf("%s: unresolved parameter %s", a.Contract, left)
	}
	script, err := hex.DecodeString(out)
	if err != nil {
		return nil, fmt.Errorf("%s: bad script hex: %w", a.Contract, err)
	}
	return script, nil
}
