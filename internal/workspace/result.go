package workspace

type Status int

const (
	StatusOK Status = iota
	StatusEmpty
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of a workspace operation. Empty means the call
// succeeded with nothing to show; Failed always carries Err.
type Result[T any] struct {
	Status Status
	Value  T
	Err    error
}

func (r Result[T]) OK() bool {
	return r.Status == StatusOK
}

func (r Result[T]) Empty() bool {
	return r.Status == StatusEmpty
}

func (r Result[T]) Failed() bool {
	return r.Status == StatusFailed
}

func ok[T any](v T) Result[T] {
	return Result[T]{Status: StatusOK, Value: v}
}

func empty[T any](v T) Result[T] {
	return Result[T]{Status: StatusEmpty, Value: v}
}

func failed[T any](err error) Result[T] {
	return Result[T]{Status: StatusFailed, Err: err}
}

// list reports Empty for a successful call that returned no items.
func list[T any](items []T) Result[[]T] {
	if len(items) == 0 {
		return empty(items)
	}
	return ok(items)
}
