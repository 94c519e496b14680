package retry

type permanentError struct {
	error
}

func (e *permanentError) Unwrap() error {
	return e.error
}

// Abort marks err as permanent. The loop returns err itself (not the
// wrapper) without making any further attempts.
//
//	if err := validate(req); err != nil {
//	    return retry.Abort(err)
//	}
//
// Only Abort ends the loop early. Errors that describe themselves as not
// temporary, such as *url.Error for a refused connection, are retried like
// any other.
func Abort(err error) error {
	return &permanentError{err}
}
