package entity

import "fmt"

// DataIntegrityError reports raw provider state that cannot back a trustworthy
// snapshot: a required reserve or price missing for an asset the wallet holds,
// or internally inconsistent reserve configuration. It is fatal to the
// request; no partial snapshot is ever produced from inconsistent inputs,
// since silent zero-filling would corrupt every downstream risk number.
type DataIntegrityError struct {
	Asset  string
	Reason string
}

func (e *DataIntegrityError) Error() string {
	if e.Asset == "" {
		return fmt.Sprintf("data integrity: %s", e.Reason)
	}
	return fmt.Sprintf("data integrity: asset %s: %s", e.Asset, e.Reason)
}

// NewDataIntegrityError builds a DataIntegrityError for the given asset.
func NewDataIntegrityError(asset, format string, args ...any) *DataIntegrityError {
	return &DataIntegrityError{Asset: asset, Reason: fmt.Sprintf(format, args...)}
}
