package profile

// Optional is an override value that is only meaningful when set.
// The zero value is "not set", so an unset override can never be
// mistaken for an override to zero.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Get returns the value and whether it is set.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether the override carries a value.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// ApplyTo writes the value into dst when set and leaves dst untouched otherwise.
func (o Optional[T]) ApplyTo(dst *T) {
	if o.set {
		*dst = o.value
	}
}
