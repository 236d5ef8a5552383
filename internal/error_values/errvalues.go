package errorvalues

import "errors"

var (
	ErrUserExists       = errors.New("such user already exists")
	ErrUserNotFound     = errors.New("user doesn't exists")
	ErrWrongCredentials = errors.New("wrong name or password")
	ErrInvalidToken     = errors.New("invalid token")
	ErrValidation       = errors.New("validation error")

	ErrOwnerNotFound        = errors.New("record owner doesn't exist")
	ErrRecordNotFound       = errors.New("record doesn't exist")
	ErrWrongOwner           = errors.New("record belongs to another user")
	ErrRecordDateNotAllowed = errors.New("record date is in the future")
	ErrUnknownKind          = errors.New("unknown record kind")
)
