package walletloader

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"cat20_wallet/internal/app/port"
)

// AddressFileLoader reads owner addresses, one per line, for batch balance checks.
// Blank lines and lines starting with # are ignored.
type AddressFileLoader struct {
	filePath string
	codec    port.AddressCodec
	network  string
	logger   port.Logger
}

// NewAddressFileLoader creates an AddressFileLoader. Addresses that codec cannot decode
// for network are skipped.
func NewAddressFileLoader(filePath string, codec port.AddressCodec, network string, logger port.Logger) *AddressFileLoader {
	return &AddressFileLoader{filePath: filePath, codec: codec, network: network, logger: logger}
}

// Addresses returns the valid addresses of the file in order, without duplicates.
func (l *AddressFileLoader) Addresses() ([]string, error) {
	file, err := os.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open address file %s: %w", l.filePath, err)
	}
	defer file.Close()

	var addresses []string
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, err := l.codec.AddressToLockingScript(line, l.network); err != nil {
			l.logger.Warn("Skipping invalid address", "file", l.filePath, "line_number", lineNum, "address", line, "error", err)
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		addresses = append(addresses, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning address file %s: %w", l.filePath, err)
	}

	l.logger.Info("Addresses loaded from file", "count", len(addresses), "path", l.filePath)
	return addresses, nil
}
