package auth

import "errors"

var (
	// ErrUnauthenticated means no usable identity came with the request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the caller is known but has no rights over the target.
	ErrForbidden = errors.New("forbidden")
)

// RequireSelf is the exact-match rule: the caller must be the target user.
func RequireSelf(caller, target string) error {
	if caller == "" {
		return ErrUnauthenticated
	}
	if caller != target {
		return ErrForbidden
	}
	return nil
}

// RequireParticipant allows the sender or the recipient of a message.
func RequireParticipant(caller, from, to string) error {
	if caller == "" {
		return ErrUnauthenticated
	}
	if caller != from && caller != to {
		return ErrForbidden
	}
	return nil
}

// RequireRecipient allows only the recipient of a message.
func RequireRecipient(caller, to string) error {
	return RequireSelf(caller, to)
}
