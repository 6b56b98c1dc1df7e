package health

import (
	"context"
	"errors"
	"fmt"
)

// ErrCredentialMissing is reported when the places API key is absent.
var ErrCredentialMissing = errors.New("places API key not configured")

// CredentialSource reports whether the upstream credential is present.
type CredentialSource interface {
	Configured() bool
}

// CredentialCheck fails while src has no credential.
func CredentialCheck(src CredentialSource) CheckFunc {
	return func(ctx context.Context) error {
		if src == nil || !src.Configured() {
			return ErrCredentialMissing
		}
		return nil
	}
}

// UpstreamCheck fails once the upstream has failed max times in a row.
// A max of zero disables the check.
func UpstreamCheck(consecutiveFailures func() int, max int) CheckFunc {
	return func(ctx context.Context) error {
		if max <= 0 || consecutiveFailures == nil {
			return nil
		}
		if n := consecutiveFailures(); n >= max {
			return fmt.Errorf("places provider failed %d consecutive calls", n)
		}
		return nil
	}
}
