package service

import (
	"bytes"
	"fmt"
	"math/big"

	"cat20_wallet/internal/pkg/utils"
)

// flexInt decodes an integer sent either as a JSON number or as a string.
// Supply and amount values can exceed 2^53, so they never pass through float64.
type flexInt struct {
	v *big.Int
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		f.v = nil
		return nil
	}
	v, err := utils.ParseBigInt(string(b))
	if err != nil {
		return err
	}
	f.v = v
	return nil
}

// Big returns the decoded value or nil when absent.
func (f flexInt) Big() *big.Int {
	return f.v
}

// Int64 returns the value as int64 and fails on overflow.
func (f flexInt) Int64() (int64, error) {
	if f.v == nil {
		return 0, nil
	}
	if !f.v.IsInt64() {
		return 0, fmt.Errorf("%s overflows int64", f.v)
	}
	return f.v.Int64(), nil
}
