// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package maps

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Keys and values cross the syscall boundary as raw fixed-size records, so
// the types backing them must be plain old data: a fixed-size representation
// with no indirections, no padding, and no bit patterns that are invalid for
// the type. checkPod verifies this once per constructed view; podIn and
// podOut below are then the only two places that reinterpret raw bytes.

func checkPod(t reflect.Type) error {
	if t == nil {
		return fmt.Errorf("interface types have no fixed representation")
	}
	switch t.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint,
		reflect.Float32, reflect.Float64:
		return nil
	case reflect.Array:
		return checkPod(t.Elem())
	case reflect.Struct:
		var fields uintptr
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if err := checkPod(f.Type); err != nil {
				return fmt.Errorf("field %s: %w", f.Name, err)
			}
			fields += f.Type.Size()
		}
		if fields != t.Size() {
			return fmt.Errorf("struct has %d padding bytes", t.Size()-fields)
		}
		return nil
	case reflect.Bool:
		return fmt.Errorf("bool has invalid bit patterns")
	default:
		return fmt.Errorf("kind %s is not plain old data", t.Kind())
	}
}

// podIn exposes v's bytes for the kernel to read.
func podIn[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}

// podOut exposes v's storage for the kernel to write.
func podOut[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}

func sizeOf[T any]() uint32 {
	var zero T
	return uint32(unsafe.Sizeof(zero))
}
