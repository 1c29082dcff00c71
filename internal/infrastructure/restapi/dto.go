package restapi

import (
	"math/big"

	"cat20_wallet/internal/domain/entity"
	"cat20_wallet/internal/pkg/utils"
)

// Integer amounts are rendered as decimal strings: they may exceed 2^53.

// APIError is the error body of every failed request.
type APIError struct {
	Error entity.ServiceError `json:"error"`
}

// TokenResponse describes the configured token.
type TokenResponse struct {
	TokenID          string `json:"tokenId"`
	GenesisTxid      string `json:"genesisTxid,omitempty"`
	Name             string `json:"name"`
	Symbol           string `json:"symbol"`
	Decimals         uint8  `json:"decimals"`
	MinterAddress    string `json:"minterAddr"`
	TokenAddress     string `json:"tokenAddr"`
	TokenAddrDerived bool   `json:"tokenAddrDerived"`
	Max              string `json:"max,omitempty"`
	Premine          string `json:"premine,omitempty"`
	Limit            string `json:"limit,omitempty"`
	Network          string `json:"network"`
}

// BalanceResponse is the confirmed token balance of an address.
type BalanceResponse struct {
	Address   string             `json:"address"`
	TokenID   string             `json:"tokenId"`
	Symbol    string             `json:"symbol"`
	Decimals  uint8              `json:"decimals"`
	Confirmed string             `json:"confirmed"`
	Formatted string             `json:"formatted"`
	Status    entity.FetchStatus `json:"status"`
}

// UtxoResponse is one spendable token output.
type UtxoResponse struct {
	TxID           string   `json:"txId"`
	OutputIndex    uint32   `json:"outputIndex"`
	Satoshis       int64    `json:"satoshis"`
	OwnerAddress   string   `json:"ownerAddr"`
	Amount         string   `json:"amount"`
	TxoStateHashes []string `json:"txoStateHashes,omitempty"`
}

// UtxoSetResponse lists token outputs of an address.
type UtxoSetResponse struct {
	Address            string             `json:"address"`
	TrackerBlockHeight uint64             `json:"trackerBlockHeight"`
	Total              string             `json:"total"`
	Status             entity.FetchStatus `json:"status"`
	Utxos              []UtxoResponse     `json:"utxos"`
}

// TokenSummaryResponse is one entry of the wallet token list.
type TokenSummaryResponse struct {
	TokenID   string             `json:"tokenId"`
	Symbol    string             `json:"symbol"`
	Decimals  uint8              `json:"decimals"`
	Confirmed string             `json:"confirmed"`
	Formatted string             `json:"formatted"`
	Status    entity.FetchStatus `json:"status"`
}

// WalletResponse is the session snapshot.
type WalletResponse struct {
	Status        entity.SessionStatus   `json:"status"`
	Address       string                 `json:"address"`
	IsConnected   bool                   `json:"isConnected"`
	NativeBalance int64                  `json:"nativeBalance"`
	Tokens        []TokenSummaryResponse `json:"tokens"`
	UpdatedAt     string                 `json:"updatedAt"`
}

// AddressRequest is the body of PUT /wallet/address.
type AddressRequest struct {
	Address string `json:"address"`
}

// TransferResponse is returned for a broadcast transfer.
type TransferResponse struct {
	TxID        string `json:"txid"`
	Amount      string `json:"amount"`
	Symbol      string `json:"symbol"`
	Destination string `json:"address"`
}

func bigString(v *big.Int) string {
	if v == nil {
		return ""
	}
	return v.String()
}

// ToTokenResponse converts token metadata.
func ToTokenResponse(info *entity.TokenMetadata, network string) TokenResponse {
	return TokenResponse{
		TokenID:          info.TokenID,
		GenesisTxid:      info.GenesisTxid,
		Name:             info.Name,
		Symbol:           info.Symbol,
		Decimals:         info.Decimals,
		MinterAddress:    info.MinterAddress,
		TokenAddress:     info.TokenAddress,
		TokenAddrDerived: info.TokenAddressDerived,
		Max:              bigString(info.Max),
		Premine:          bigString(info.Premine),
		Limit:            bigString(info.Limit),
		Network:          network,
	}
}

// ToBalanceResponse converts a balance; Formatted keeps every decimal place.
func ToBalanceResponse(address string, decimals uint8, bal entity.Balance) BalanceResponse {
	return BalanceResponse{
		Address:   address,
		TokenID:   bal.TokenID,
		Symbol:    bal.Symbol,
		Decimals:  decimals,
		Confirmed: bigString(bal.Confirmed),
		Formatted: utils.UnscaleByDecimals(bal.Confirmed, decimals),
		Status:    bal.Status,
	}
}

// ToUtxoSetResponse converts a utxo set.
func ToUtxoSetResponse(address string, set entity.UtxoSet) UtxoSetResponse {
	out := UtxoSetResponse{
		Address:            address,
		TrackerBlockHeight: set.TrackerBlockHeight,
		Total:              set.TotalAmount().String(),
		Status:             set.Status,
		Utxos:              make([]UtxoResponse, 0, len(set.Utxos)),
	}
	for _, u := range set.Utxos {
		out.Utxos = append(out.Utxos, UtxoResponse{
			TxID:           u.Outpoint.TxID,
			OutputIndex:    u.Outpoint.Index,
			Satoshis:       u.Satoshis,
			OwnerAddress:   u.OwnerAddress,
			Amount:         bigString(u.Amount),
			TxoStateHashes: u.TxoStateHashes,
		})
	}
	return out
}

// ToWalletResponse converts a session snapshot.
func ToWalletResponse(st entity.WalletState) WalletResponse {
	tokens := make([]TokenSummaryResponse, 0, len(st.Tokens))
	for _, t := range st.Tokens {
		tokens = append(tokens, TokenSummaryResponse{
			TokenID:   t.TokenID,
			Symbol:    t.Symbol,
			Decimals:  t.Decimals,
			Confirmed: bigString(t.Confirmed),
			Formatted: t.Formatted,
			Status:    t.Status,
		})
	}
	return WalletResponse{
		Status:        st.Status,
		Address:       st.Address,
		IsConnected:   st.IsConnected,
		NativeBalance: st.NativeBalance,
		Tokens:        tokens,
		UpdatedAt:     st.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}
