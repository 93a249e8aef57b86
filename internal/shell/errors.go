package shell

import "errors"

// Shell errors.
var (
	ErrWrongView    = errors.New("action is not available on this page")
	ErrActionFailed = errors.New("action failed")
)
