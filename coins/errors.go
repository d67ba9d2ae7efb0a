package coins

import "errors"

type InvalidDenominationError struct {
	Denomination Denomination
}

func (e InvalidDenominationError) Error() string {
	return "Invalid denomination"
}

func (InvalidDenominationError) InvalidInput() bool {
	return true
}

func InvalidDenomination(d Denomination) error {
	return InvalidDenominationError{Denomination: d}
}

type InvalidAmountError struct {
	Amount string
}

func (e InvalidAmountError) Error() string {
	return "Invalid amount"
}

func (InvalidAmountError) InvalidInput() bool {
	return true
}

func InvalidAmount(amount string) error {
	return InvalidAmountError{Amount: amount}
}

// IsInvalidInput reports whether err was raised by input validation, before
// anything was appended.
func IsInvalidInput(err error) bool {
	var invalid interface{ InvalidInput() bool }
	return errors.As(err, &invalid) && invalid.InvalidInput()
}
