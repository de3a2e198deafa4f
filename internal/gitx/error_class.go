// SPDX-License-Identifier: MIT
package gitx

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrExecutableNotFound marks a failure to locate any git executable.
	ErrExecutableNotFound = errors.New("git executable not found")
	// ErrFetchFailed marks a failed `git fetch` during refresh.
	ErrFetchFailed = errors.New("git fetch failed")
	// ErrNoUpstream marks a pull attempted without an upstream branch.
	ErrNoUpstream = errors.New("no remote branch is set for this repository")
	// ErrInvalidUpstream marks an upstream ref that has no remote/branch form.
	ErrInvalidUpstream = errors.New("upstream is not in remote/branch form")
	// ErrPullFailed marks a failed `git pull`.
	ErrPullFailed = errors.New("git pull failed")
)

// Error classes reported alongside in-band failures.
const (
	ClassTimeout       = "timeout"
	ClassNotFound      = "not_found"
	ClassNoUpstream    = "no_upstream"
	ClassAuth          = "auth"
	ClassNetwork       = "network"
	ClassCorrupt       = "corrupt"
	ClassMissingRemote = "missing_remote"
	ClassFetch         = "fetch"
	ClassPull          = "pull"
	ClassUnknown       = "unknown"
)

type messageRule struct {
	class   string
	needles []string
}

// messageRules are matched in order against the lowercased error text.
var messageRules = []messageRule{
	{ClassAuth, []string{"permission denied", "authentication failed", "access denied", "publickey", "could not read username", "credential"}},
	{ClassNetwork, []string{"could not resolve host", "network is unreachable", "connection timed out", "connection refused", "failed to connect", "temporary failure in name resolution", "tls handshake timeout"}},
	{ClassTimeout, []string{"timeout", "timed out", "deadline exceeded"}},
	{ClassCorrupt, []string{"not a git repository", "bad object", "corrupt", "object file"}},
	{ClassMissingRemote, []string{"repository not found", "couldn't find remote ref", "remote ref does not exist", "no such remote", "does not appear to be a git repository"}},
}

// ClassifyError maps a refresh or pull error to one of the Class constants.
// Sentinels are checked first, then git's message text, then the failed step.
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ClassTimeout
	case errors.Is(err, ErrExecutableNotFound):
		return ClassNotFound
	case errors.Is(err, ErrNoUpstream), errors.Is(err, ErrInvalidUpstream):
		return ClassNoUpstream
	}

	msg := strings.ToLower(err.Error())
	for _, rule := range messageRules {
		for _, needle := range rule.needles {
			if strings.Contains(msg, needle) {
				return rule.class
			}
		}
	}

	switch {
	case errors.Is(err, ErrFetchFailed):
		return ClassFetch
	case errors.Is(err, ErrPullFailed):
		return ClassPull
	default:
		return ClassUnknown
	}
}
