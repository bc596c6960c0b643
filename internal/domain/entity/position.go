package entity

import "math/big"

// UserPosition is one wallet's holdings in a single reserve, in raw token
// units. Amounts are never negative.
type UserPosition struct {
	Asset AssetRef

	// Supplied is the aToken balance in raw token units.
	Supplied *big.Int
	// VariableDebt and StableDebt are debt token balances in raw token units.
	VariableDebt *big.Int
	StableDebt   *big.Int

	// CollateralEnabled is the user-level usage-as-collateral flag for this
	// reserve. A supplied balance with the flag cleared is reported but does
	// not back debt.
	CollateralEnabled bool
}

// IsEmpty reports whether the position carries neither supply nor debt.
// Empty positions are omitted from snapshot output arrays.
func (p UserPosition) IsEmpty() bool {
	return sign(p.Supplied) == 0 && sign(p.VariableDebt) == 0 && sign(p.StableDebt) == 0
}

// HasDebt reports whether the position carries variable or stable debt.
func (p UserPosition) HasDebt() bool {
	return sign(p.VariableDebt) != 0 || sign(p.StableDebt) != 0
}

func sign(v *big.Int) int {
	if v == nil {
		return 0
	}
	return v.Sign()
}
