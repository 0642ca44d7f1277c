// Package view holds the operator-facing state machines: the live
// transactions feed with its filter mutators, the transaction editor,
// and the category list. Each type validates input before touching the
// repository and exposes the current state as a UiState.
package view

// UiState wraps a value for presentation: exactly one of Loading, Err
// or Data is meaningful at a time.
type UiState[T any] struct {
	Loading bool
	Err     error
	Data    T
}

func LoadingState[T any]() UiState[T] {
	return UiState[T]{Loading: true}
}

func ErrState[T any](err error) UiState[T] {
	return UiState[T]{Err: err}
}

func DataState[T any](data T) UiState[T] {
	return UiState[T]{Data: data}
}
