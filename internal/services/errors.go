package services

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrNotEditable     = errors.New("document can no longer be edited")
	ErrDuplicateNumber = errors.New("document number already used")
)
