package common

import (
	"bytes"
	"encoding/binary"
	"unsafe"

	"github.com/cockroachdb/errors"
)

// Provides general helper functions for comparisons and conversions

// AllOfAinB comparison function to ensure a given list is fully contained in another. This is
// mainly used to check for extension and layer support during the initialization process.
func AllOfAinB(a []string, b []string) bool {
	for _, _a := range a {
		isIn := false
		for _, _b := range b {
			if TerminatedStr(_a) == TerminatedStr(_b) {
				isIn = true
				break
			}
		}
		if !isIn {
			return false
		}
	}
	return true
}

// MissingOfAinB lists all entries of a not present in b, used to report what exactly is unsupported.
func MissingOfAinB(a []string, b []string) []string {
	var missing []string
	for _, _a := range a {
		if !AllOfAinB([]string{_a}, b) {
			missing = append(missing, _a)
		}
	}
	return missing
}

// RawBytes writes a given fixed size object as its little endian byte representation voiding all type
// information in the process. This is mainly used to be able to put data into vk.Memcopy
func RawBytes(p interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, p); err != nil {
		return nil, errors.Wrap(err, "binary.Write failed")
	}
	return buf.Bytes(), nil
}

// TerminatedStr ensures the given string is \x00 terminated as vulkan expects this in certain structs
func TerminatedStr(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\x00' {
		return s + "\x00"
	}
	return s
}

// TerminatedStrs returns a terminated copy of strs, the input is left untouched.
func TerminatedStrs(strs []string) []string {
	out := make([]string, len(strs))
	for i := range strs {
		out[i] = TerminatedStr(strs[i])
	}
	return out
}

// AsUint32Arr reinterprets SPIR-V byte code as the []uint32 expected by vk.ShaderModuleCreateInfo. The code
// size of a valid module is always a multiple of 4.
func AsUint32Arr(data []byte) ([]uint32, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, errors.Newf("shader code size %d is not a multiple of 4", len(data))
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4), nil
}
