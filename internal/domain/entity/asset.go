package entity

// ZeroAddress represents the Ethereum zero address.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// AssetRef is the immutable identity of a listed reserve asset. It is used as
// the join key between reserve configuration and user balances and is never
// mutated after construction.
type AssetRef struct {
	Symbol   string `json:"symbol"`
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
}

// IsZero reports whether the reference points at the zero address.
func (a AssetRef) IsZero() bool {
	return a.Address == "" || a.Address == ZeroAddress
}
