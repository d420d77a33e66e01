// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package maps

import (
	"fmt"
	"reflect"

	apperrors "grimm.is/bpfmap/internal/errors"
)

// InvalidMapTypeError reports a view built against a map of the wrong family.
type InvalidMapTypeError struct {
	Actual Kind
}

func (e *InvalidMapTypeError) Error() string {
	return fmt.Sprintf("invalid map type: %s", e.Actual)
}

func (e *InvalidMapTypeError) ErrorKind() apperrors.Kind {
	return apperrors.KindValidation
}

// InvalidKeySizeError reports a key type whose size disagrees with the map
// definition.
type InvalidKeySizeError struct {
	Actual   uint32
	Expected uint32
}

func (e *InvalidKeySizeError) Error() string {
	return fmt.Sprintf("invalid key size %d, expected %d", e.Actual, e.Expected)
}

func (e *InvalidKeySizeError) ErrorKind() apperrors.Kind {
	return apperrors.KindValidation
}

// InvalidValueSizeError reports a value type whose size disagrees with the
// map definition.
type InvalidValueSizeError struct {
	Actual   uint32
	Expected uint32
}

func (e *InvalidValueSizeError) Error() string {
	return fmt.Sprintf("invalid value size %d, expected %d", e.Actual, e.Expected)
}

func (e *InvalidValueSizeError) ErrorKind() apperrors.Kind {
	return apperrors.KindValidation
}

// InvalidTypeError reports a key or value type that is not plain old data
// and therefore cannot be read from or written to raw map memory.
type InvalidTypeError struct {
	Type   reflect.Type
	Reason string
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("type %s is not plain old data: %s", e.Type, e.Reason)
}

func (e *InvalidTypeError) ErrorKind() apperrors.Kind {
	return apperrors.KindValidation
}

// ErrNotCreated is returned when a descriptor has no kernel object behind it
// yet. Retryable once the loader has created the map.
var ErrNotCreated error = &notCreatedError{}

type notCreatedError struct{}

func (*notCreatedError) Error() string {
	return "map has not been created by the kernel"
}

func (*notCreatedError) ErrorKind() apperrors.Kind {
	return apperrors.KindUnavailable
}

// ErrReadOnly is returned by Insert and Remove on a view built from
// read-only access.
var ErrReadOnly error = &readOnlyError{}

type readOnlyError struct{}

func (*readOnlyError) Error() string {
	return "map view is read-only"
}

func (*readOnlyError) ErrorKind() apperrors.Kind {
	return apperrors.KindPermission
}

// SyscallError wraps a kernel-boundary failure with the operation that
// caused it. The raw result code and OS error are preserved verbatim for
// diagnostics; nothing is retried here.
type SyscallError struct {
	Op    string
	Code  int
	Errno error
}

func (e *SyscallError) Error() string {
	return fmt.Sprintf("%s failed with code %d: %v", e.Op, e.Code, e.Errno)
}

func (e *SyscallError) Unwrap() error {
	return e.Errno
}

func (e *SyscallError) ErrorKind() apperrors.Kind {
	return apperrors.KindSyscall
}

// BorrowError reports a shared-handle borrow that conflicts with an active
// borrow of the opposite access level.
type BorrowError struct {
	Name    string
	Mutable bool
}

func (e *BorrowError) Error() string {
	access := "shared"
	if e.Mutable {
		access = "exclusive"
	}
	return fmt.Sprintf("map %q: %s borrow conflicts with an active borrow", e.Name, access)
}

func (e *BorrowError) ErrorKind() apperrors.Kind {
	return apperrors.KindBorrow
}
