package utils

import (
	"encoding/json"
	"errors"
	"strings"
)

// Removes the element at index and returns the shortened slice.
//
// Does not modify the passed slice.
func RemoveStringFromSlice(s []string, index int) ([]string, error) {
	if index < 0 || index >= len(s) {
		return nil, errors.New("index out of range")
	}
	out := make([]string, 0, len(s)-1)
	out = append(out, s[:index]...)
	return append(out, s[index+1:]...), nil
}

// Removes the first occurrence of str. Returns false if str was not found.
func RemoveString(s []string, str string) ([]string, bool) {
	for i, st := range s {
		if st == str {
			out, _ := RemoveStringFromSlice(s, i)
			return out, true
		}
	}
	return s, false
}

func CheckStringSliceForDuplicates(s []string, str string) bool {
	for _, st := range s {
		if st == str {
			return true
		}
	}
	return false
}

func MarshalStruct(input interface{}) (string, error) {
	bytes, err := json.Marshal(input)
	return string(bytes), err
}

// Cuts s to at most max runes.
func Truncate(s string, max int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= max {
		return string(r)
	}
	return string(r[:max])
}
