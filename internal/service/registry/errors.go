package registry

import "errors"

// errNoChange aborts an update cycle without writing.
var errNoChange = errors.New("no change")
