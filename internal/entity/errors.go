package entity

import (
	"errors"
	"fmt"
)

// NotConfiguredError signals missing provider credentials. It is a
// precondition failure and is never retried automatically.
type NotConfiguredError struct {
	Service string
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("%s is not configured. Set the credentials in the admin panel", e.Service)
}

// LimitExceededError names the threshold that gated the call.
type LimitExceededError struct {
	Kind      string
	Threshold int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("limit of %d %s reached", e.Threshold, e.Kind)
}

// ProviderError wraps a failed external call, keeping the provider-supplied
// message when one was available.
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NotFoundError signals an absent post or prompt.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// InvalidTransitionError signals a human action attempted against an
// incompatible post status.
type InvalidTransitionError struct {
	Action string
	Status PostStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a post in status %q", e.Action, e.Status)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsLimitExceeded(err error) bool {
	var le *LimitExceededError
	return errors.As(err, &le)
}

func IsNotConfigured(err error) bool {
	var nc *NotConfiguredError
	return errors.As(err, &nc)
}

func IsInvalidTransition(err error) bool {
	var it *InvalidTransitionError
	return errors.As(err, &it)
}
