package userdao

// Optional holds a value that may be absent. Lookups return it instead of a
// nil pointer so that "not found" is a normal result the caller must check,
// not an error and not a sentinel.
//
// Usage example:
//
//	found, err := repo.FindByID(ctx, 42)
//	if err != nil {
//	    return err
//	}
//	if user, ok := found.Get(); ok {
//	    fmt.Println(user.Name)
//	}
type Optional[T any] struct {
	value   T
	present bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true}
}

// None returns an empty Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present
}

// IsPresent reports whether a value is held.
func (o Optional[T]) IsPresent() bool {
	return o.present
}

// OrElse returns the held value, or fallback when empty.
func (o Optional[T]) OrElse(fallback T) T {
	if o.present {
		return o.value
	}
	return fallback
}
