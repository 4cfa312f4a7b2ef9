package wallet

import (
	"errors"
	"fmt"
)

// CodeUserRejected is the EIP-1193 code a provider returns when the user
// cancels the connection prompt.
const CodeUserRejected = 4001

var (
	// ErrProviderUnavailable means no wallet provider is present or reachable.
	ErrProviderUnavailable = errors.New("wallet provider unavailable")
	// ErrUserRejected means the user declined the connection prompt.
	ErrUserRejected = errors.New("wallet connection rejected by user")
	// ErrNoAccounts means the provider answered with an empty account list.
	ErrNoAccounts = errors.New("wallet returned no accounts")
	// ErrAlreadySubscribed is returned when a second accounts-changed handler is registered.
	ErrAlreadySubscribed = errors.New("accounts-changed handler already registered")
)

// ProviderError is an error object returned by the wallet provider itself.
type ProviderError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// UnknownError wraps any provider failure that has no dedicated classification.
type UnknownError struct {
	Err error
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("wallet connection failed: %v", e.Err)
}

func (e *UnknownError) Unwrap() error {
	return e.Err
}

// UserMessage maps a connection error onto the text shown by the gateway screen.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrProviderUnavailable):
		return "MetaMask not detected! Please install the extension."
	case errors.Is(err, ErrUserRejected):
		return "Connection rejected by user."
	case errors.Is(err, ErrNoAccounts):
		return "No accounts found. Please unlock MetaMask."
	default:
		return "Failed to connect. Please try again."
	}
}
