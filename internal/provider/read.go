package provider

import (
	"fortio.org/safecast"

	"memlens/internal/value"
)

// requireChild fetches a named field the recognized layout guarantees.
// Absence means the value uses a layout version this decoder does not know.
func requireChild(v *value.Value, owner, name string) (*value.Value, error) {
	c, err := v.Child(name)
	if err != nil {
		return nil, &DecodeError{Kind: ErrUnrecognizedLayout, TypeName: owner, Field: name, Err: err}
	}
	return c, nil
}

// readScalar reads a field's unsigned scalar, classifying the failure as a
// downstream read error.
func readScalar(v *value.Value, owner string) (uint64, error) {
	raw, err := v.Uint()
	if err != nil {
		return 0, &DecodeError{Kind: ErrRead, TypeName: owner, Err: err}
	}
	return raw, nil
}

// readCount reads a length/size header field as an int.
func readCount(v *value.Value, owner, name string) (int, error) {
	field, err := requireChild(v, owner, name)
	if err != nil {
		return 0, err
	}
	raw, err := readScalar(field, owner)
	if err != nil {
		return 0, err
	}
	n, err := safecast.Conv[int](raw)
	if err != nil {
		return 0, &DecodeError{Kind: ErrTypeResolve, TypeName: owner, Err: err}
	}
	return n, nil
}
