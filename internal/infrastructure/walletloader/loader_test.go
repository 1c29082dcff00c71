package walletloader

import (
	"os"
	"path/filepath"
	"testing"

	"cat20_wallet/internal/infrastructure/addresscodec"
	"cat20_wallet/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const taprootAddr = "bc1p5cyxnuxmeuwuvkwfem96lqzszd02n6xdcjrs20cac6yqjjwudpxqkedrcr"

func TestAddresses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "addresses.txt")
	body := "# watch list\n\n" + taprootAddr + "\nnot-an-address\n  " + taprootAddr + "  \n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	l := NewAddressFileLoader(path, addresscodec.New(), "fractal-mainnet", logger.NewSlogAdapter())
	got, err := l.Addresses()
	require.NoError(t, err)
	assert.Equal(t, []string{taprootAddr}, got)
}

func TestAddresses_MissingFile(t *testing.T) {
	l := NewAddressFileLoader(filepath.Join(t.TempDir(), "nope.txt"), addresscodec.New(), "fractal-mainnet", logger.NewSlogAdapter())
	_, err := l.Addresses()
	assert.Error(t, err)
}
