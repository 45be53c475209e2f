package contract

import "errors"

var (
	// ErrInvalidAddress is returned for addresses that are not 0x + 40 hex.
	ErrInvalidAddress = errors.New("invalid contract address")
	// ErrInvalidABI is returned when an ABI cannot be parsed.
	ErrInvalidABI = errors.New("invalid ABI format")
	// ErrInvalidParam is returned when a parameter cannot be encoded.
	ErrInvalidParam = errors.New("invalid parameter")
	// ErrNotReady is returned when a call is attempted before address, ABI
	// and backend are set.
	ErrNotReady = errors.New("contract not initialized")
	// ErrSignerRequired is returned for write calls without a signer.
	ErrSignerRequired = errors.New("signer required")
	// ErrFunctionNotFound is returned for names absent from the ABI.
	ErrFunctionNotFound = errors.New("function not found in ABI")
	// ErrAmbiguousFunction is returned when an overloaded name cannot be
	// resolved from the arguments.
	ErrAmbiguousFunction = errors.New("ambiguous overloaded function")
)
