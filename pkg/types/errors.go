package types

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrOpportunityNotFound  = errors.New("opportunity not found")
	ErrApplicationNotFound  = errors.New("application not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrDuplicateApplication = errors.New("application already submitted for this opportunity")
	ErrInvalidTransition    = errors.New("application has already been reviewed")
)
