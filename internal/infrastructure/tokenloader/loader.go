package tokenloader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cat20_wallet/internal/app/port"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultTokenDirectoryPath = "data/tokens"

// TokenListEntry is one token of a <network>.json list file.
type TokenListEntry struct {
	TokenID string `json:"tokenId"`
	Symbol  string `json:"symbol,omitempty"`
	Network string `json:"network,omitempty"`
}

// TokenFileLoader reads the tokens shown for a wallet from <dir>/<network>.json.
type TokenFileLoader struct {
	tokenDirPath string
	logger       port.Logger
}

// NewTokenLoader creates a TokenFileLoader. An empty dir selects data/tokens.
func NewTokenLoader(dir string, logger port.Logger) *TokenFileLoader {
	if dir == "" {
		dir = defaultTokenDirectoryPath
	}
	return &TokenFileLoader{tokenDirPath: dir, logger: logger}
}

// TokenIDs returns the token ids listed for network, in file order and without duplicates.
// A missing file yields no ids and no error.
func (l *TokenFileLoader) TokenIDs(network string) ([]string, error) {
	path := filepath.Join(l.tokenDirPath, network+".json")
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		l.logger.Debug("No token list file for network", "path", path, "network", network)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token list %s: %w", path, err)
	}

	var entries []TokenListEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token list %s: %w", path, err)
	}

	ids := make([]string, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		id := strings.TrimSpace(e.TokenID)
		if id == "" {
			l.logger.Warn("Token list entry without tokenId, skipping", "path", path, "index", i)
			continue
		}
		if e.Network != "" && e.Network != network {
			l.logger.Warn("Token listed for another network, skipping",
				"path", path, "token_id", id, "entry_network", e.Network, "expected_network", network)
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	l.logger.Info("Loaded token list", "network", network, "path", path, "count", len(ids))
	return ids, nil
}
