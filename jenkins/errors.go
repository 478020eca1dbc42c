package jenkins

import "fmt"

type jenkinsError struct {
	context string
	err     error
}

func (e *jenkinsError) Error() string {
	if e.err != nil {
		return e.context + " - " + e.err.Error()
	}
	return e.context
}

func (e *jenkinsError) Unwrap() error {
	return e.err
}

func newJenkinsError(ctx string, failure error) *jenkinsError {
	return &jenkinsError{
		context: ctx,
		err:     failure,
	}
}

// APIError is returned when Jenkins answers with an unexpected HTTP
// status. The response body is kept because Jenkins tends to bury the
// actual reason in an HTML error page.
type APIError struct {
	Status int
	URL    string
	Body   string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("jenkins returned %d for %s: %s", e.Status, e.URL, e.Body)
	}
	return fmt.Sprintf("jenkins returned %d for %s", e.Status, e.URL)
}

// NotFoundError reports a missing server-side entity (job, view, node,
// plugin, credential or queue item).
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// IsNotFound reports whether err (or anything it wraps) is a NotFoundError.
func IsNotFound(err error) bool {
	for err != nil {
		if _, ok := err.(*NotFoundError); ok {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
