package project

import "errors"

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrNotAssigned     = errors.New("you are not assigned to this project")
	ErrUnknownUsers    = errors.New("one or more users do not exist")
)
