package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// IdentityNotFoundError indicates the organization's client credential is
// absent from the wallet.
type IdentityNotFoundError struct {
	Identity string
}

func (e IdentityNotFoundError) Error() string {
	return fmt.Sprintf("identity %s is not in wallet", e.Identity)
}

func (e IdentityNotFoundError) Is(target error) bool {
	_, ok := target.(IdentityNotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*IdentityNotFoundError)
	return ok
}

// ErrIdentityNotFound is the sentinel error for missing wallet identities.
var ErrIdentityNotFound = IdentityNotFoundError{}

// ConnectionError indicates a network, profile or certificate failure while
// talking to the ledger. Retryable by the caller, never retried internally.
type ConnectionError struct {
	Err error
}

func (e ConnectionError) Error() string {
	return fmt.Sprintf("ledger connection failed: %v", e.Err)
}

func (e ConnectionError) Unwrap() error { return e.Err }

func (e ConnectionError) Is(target error) bool {
	_, ok := target.(ConnectionError)
	if ok {
		return true
	}
	_, ok = target.(*ConnectionError)
	return ok
}

// ErrConnection is the sentinel error for ledger connection failures.
var ErrConnection = ConnectionError{}

// TransactionError indicates the chaincode rejected an invocation. Benign in
// the auto-grant race path, fatal everywhere else.
type TransactionError struct {
	Function string
	Err      error
}

func (e TransactionError) Error() string {
	return fmt.Sprintf("chaincode %s rejected: %v", e.Function, e.Err)
}

func (e TransactionError) Unwrap() error { return e.Err }

func (e TransactionError) Is(target error) bool {
	_, ok := target.(TransactionError)
	if ok {
		return true
	}
	_, ok = target.(*TransactionError)
	return ok
}

// ErrTransaction is the sentinel error for chaincode rejections.
var ErrTransaction = TransactionError{}

// PolicyMissingError indicates a contract was proposed for a dataset that
// carries no access policy.
type PolicyMissingError struct {
	DatasetID string
}

func (e PolicyMissingError) Error() string {
	return fmt.Sprintf("dataset %s has no policy", e.DatasetID)
}

func (e PolicyMissingError) Is(target error) bool {
	_, ok := target.(PolicyMissingError)
	if ok {
		return true
	}
	_, ok = target.(*PolicyMissingError)
	return ok
}

// ErrPolicyMissing is the sentinel error for datasets without a policy.
var ErrPolicyMissing = PolicyMissingError{}

// StaleStateError indicates a conditioned update matched zero rows: the row's
// state diverged from the caller's assumption.
type StaleStateError struct {
	Resource string
}

func (e StaleStateError) Error() string {
	if e.Resource == "" {
		return "state changed since read"
	}
	return fmt.Sprintf("%s state changed since read", e.Resource)
}

func (e StaleStateError) Is(target error) bool {
	_, ok := target.(StaleStateError)
	if ok {
		return true
	}
	_, ok = target.(*StaleStateError)
	return ok
}

// ErrStaleState is the sentinel error for lost conditioned updates.
var ErrStaleState = StaleStateError{}
