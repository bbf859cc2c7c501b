package service

import "errors"

var (
	ErrValidationNoItemsProvided   = errors.New("no sync items were provided")
	ErrValidationNoUserID          = errors.New("no user id was provided")
	ErrValidationUnknownResolution = errors.New("unknown conflict resolution")
	ErrValidationNoManualData      = errors.New("manual resolution requires resolved data")
)
