// Package errorsx small helpers for composing errors.
package errorsx

import (
	"errors"
	"fmt"
	"log"
)

// Compact returns the first error in the set, if any.
func Compact(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	return nil
}

// MaybeLog logs the error if present and returns it.
func MaybeLog(err error) error {
	if err == nil {
		return err
	}

	log.Output(2, fmt.Sprintln(err))
	return err
}

// UserFriendly represents an error whose message can be displayed to users as is.
func UserFriendly(err error) error {
	if err == nil {
		return nil
	}

	return userfriendly{
		error: err,
	}
}

// IsUserFriendly checks if any error within the chain was marked user friendly.
func IsUserFriendly(err error) bool {
	var uf interface{ UserFriendly() }
	return errors.As(err, &uf)
}

type userfriendly struct {
	error
}

// user friendly error
func (t userfriendly) UserFriendly() {}
func (t userfriendly) Unwrap() error {
	return t.error
}
func (t userfriendly) Cause() error {
	return t.error
}
