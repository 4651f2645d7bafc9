// Package errors provides structured error handling for the wallet.
// It defines the wallet error taxonomy, exit codes, and helpers for adding
// context, details, suggestions and carried quantities to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mrz1836/evmwallet/pkg/amount"
)

// Exit codes used by the CLI.
const (
	ExitSuccess    = 0 // Successful execution
	ExitGeneral    = 1 // General/unknown error
	ExitInput      = 2 // Invalid input
	ExitAuth       = 3 // Authentication failed
	ExitNotFound   = 4 // Resource not found
	ExitPermission = 5 // Permission denied or insufficient funds
)

// WalletError is the structured error type for the wallet.
type WalletError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Quantity   *amount.Quantity  // Amount the caller needs to render the error (minimum, maximum, fee)
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *WalletError) Error() string {
	msg := e.Message

	if e.Quantity != nil {
		msg = fmt.Sprintf("%s (amount: %s)", msg, e.Quantity.String())
	}

	// Sorted for deterministic output
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *WalletError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for WalletError.
func (e *WalletError) Is(target error) bool {
	var t *WalletError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// General errors.
var (
	ErrGeneral = &WalletError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &WalletError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	ErrAuthentication = &WalletError{
		Code:     "AUTHENTICATION_FAILED",
		Message:  "authentication failed",
		ExitCode: ExitAuth,
	}

	ErrNotFound = &WalletError{
		Code:     "NOT_FOUND",
		Message:  "resource not found",
		ExitCode: ExitNotFound,
	}

	ErrNotSupported = &WalletError{
		Code:     "NOT_SUPPORTED",
		Message:  "operation not supported for this asset",
		ExitCode: ExitInput,
	}

	ErrInvalidState = &WalletError{
		Code:     "INVALID_STATE",
		Message:  "wallet is not in a state that allows this operation",
		ExitCode: ExitGeneral,
	}

	ErrConfigInvalid = &WalletError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration is invalid",
		ExitCode: ExitInput,
	}

	ErrInvalidMnemonic = &WalletError{
		Code:     "INVALID_MNEMONIC",
		Message:  "invalid mnemonic phrase",
		ExitCode: ExitInput,
	}

	ErrDecryptionFailed = &WalletError{
		Code:     "DECRYPTION_FAILED",
		Message:  "decryption failed - wrong passphrase or corrupted file",
		ExitCode: ExitAuth,
	}
)

// Wallet validation errors.
var (
	ErrInvalidAddress = &WalletError{
		Code:     "INVALID_ADDRESS",
		Message:  "invalid address format",
		ExitCode: ExitInput,
	}

	ErrDestinationEqualsSource = &WalletError{
		Code:     "DESTINATION_EQUALS_SOURCE",
		Message:  "destination address equals source address",
		ExitCode: ExitInput,
	}

	ErrGasLimitInvalid = &WalletError{
		Code:     "GAS_LIMIT_INVALID",
		Message:  "invalid gas limit",
		ExitCode: ExitInput,
	}

	ErrSmallAmount = &WalletError{
		Code:     "SMALL_AMOUNT",
		Message:  "amount is below the minimum",
		ExitCode: ExitInput,
	}

	ErrBigAmount = &WalletError{
		Code:     "BIG_AMOUNT",
		Message:  "amount exceeds the available balance",
		ExitCode: ExitPermission,
	}

	ErrBigAmountConfirmationPending = &WalletError{
		Code:     "BIG_AMOUNT_CONFIRMATION_PENDING",
		Message:  "amount exceeds the confirmed balance, confirmation pending",
		ExitCode: ExitPermission,
	}

	ErrInsufficientCoinForFee = &WalletError{
		Code:     "INSUFFICIENT_COIN_FOR_FEE",
		Message:  "insufficient coin balance to pay the transaction fee",
		ExitCode: ExitPermission,
	}

	ErrInvalidPrivateKey = &WalletError{
		Code:     "INVALID_PRIVATE_KEY",
		Message:  "invalid private key",
		ExitCode: ExitInput,
	}

	ErrUnsupportedAssetKind = &WalletError{
		Code:     "UNSUPPORTED_ASSET_KIND",
		Message:  "unsupported asset kind",
		ExitCode: ExitGeneral,
	}
)

// New creates a new WalletError with the given code and message.
func New(code, message string) *WalletError {
	return &WalletError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// clone copies a WalletError so sentinels are never mutated.
func clone(we *WalletError) *WalletError {
	c := *we
	return &c
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var we *WalletError
	if errors.As(err, &we) {
		c := clone(we)
		c.Message = fmt.Sprintf("%s: %s", msg, we.Message)
		c.Cause = err
		return c
	}

	return &WalletError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var we *WalletError
	if errors.As(err, &we) {
		c := clone(we)
		c.Details = details
		return c
	}

	return &WalletError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var we *WalletError
	if errors.As(err, &we) {
		c := clone(we)
		c.Suggestion = suggestion
		return c
	}

	return &WalletError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// WithQuantity attaches the amount the caller needs to render the error.
func WithQuantity(err error, q amount.Quantity) error {
	if err == nil {
		return nil
	}

	var we *WalletError
	if errors.As(err, &we) {
		c := clone(we)
		c.Quantity = &q
		return c
	}

	return &WalletError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Quantity: &q,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// QuantityOf returns the quantity carried by err, if any.
func QuantityOf(err error) (amount.Quantity, bool) {
	var we *WalletError
	if errors.As(err, &we) && we.Quantity != nil {
		return *we.Quantity, true
	}
	return amount.Quantity{}, false
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var we *WalletError
	if errors.As(err, &we) {
		return we.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var we *WalletError
	if errors.As(err, &we) {
		return we.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
