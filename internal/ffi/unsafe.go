package ffi

import "unsafe"

// bytesPtr returns the address of buf's first byte, for passing a
// NUL-terminated Go byte slice to a C function expecting char*. The
// caller (MarshalContext) is responsible for keeping buf alive for the
// duration of the call.
func bytesPtr(buf []byte) unsafe.Pointer {
	if len(buf) == 0 {
		return nil
	}
	return unsafe.Pointer(&buf[0])
}

// goStringFromCPtr copies a NUL-terminated C string into a Go string.
// Per spec.md §4.10's documented ownership decision, the source pointer
// is always treated as borrowed: this never frees it.
func goStringFromCPtr(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	var length int
	for {
		b := *(*byte)(unsafe.Pointer(ptr + uintptr(length)))
		if b == 0 {
			break
		}
		length++
	}
	out := make([]byte, length)
	for i := 0; i < length; i++ {
		out[i] = *(*byte)(unsafe.Pointer(ptr + uintptr(i)))
	}
	return string(out)
}
