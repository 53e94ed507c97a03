// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// A Param is a single query parameter.
//
// Value may be nil (the parameter is dropped), a scalar, or a slice or
// array of scalars (one parameter is emitted per element, in order).
// Scalars are strings, booleans, integers, floats, fmt.Stringer values
// and pointers to any of these; anything else is formatted with
// fmt.Sprint. A nil element inside a slice is emitted as "null".
type Param struct {
	Key   string
	Value interface{}
}

// A Query is an ordered list of query parameters. Keys may repeat.
type Query []Param

// QueryFromMap returns a Query holding the entries of m, sorted by key
// so the result is deterministic.
func QueryFromMap(m map[string]interface{}) Query {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	q := make(Query, 0, len(keys))
	for _, k := range keys {
		q = append(q, Param{Key: k, Value: m[k]})
	}
	return q
}

// Pairs normalizes q into key/value string pairs: nil values are
// dropped and sequences are expanded, preserving input order.
func (q Query) Pairs() [][2]string {
	var pairs [][2]string
	for _, p := range q {
		v, ok := deref(p.Value)
		if !ok {
			continue
		}
		if isSequence(v) {
			for i := 0; i < v.Len(); i++ {
				pairs = append(pairs, [2]string{p.Key, formatValue(v.Index(i))})
			}
		} else {
			pairs = append(pairs, [2]string{p.Key, formatValue(v)})
		}
	}
	return pairs
}

// Encode returns q in URL query form ("a=1&c=2&c=3"), with reserved
// characters escaped as url.QueryEscape does. That escapes "*" and
// leaves "~" alone, unlike a browser's URLSearchParams; both forms
// decode to the same value. The result is empty if no parameter
// survives normalization.
func (q Query) Encode() string {
	var b strings.Builder
	for i, pair := range q.Pairs() {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(pair[0]))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(pair[1]))
	}
	return b.String()
}

// AppendTo appends the encoded query to path, separated by "?". If the
// encoded query is empty, path is returned unmodified.
func (q Query) AppendTo(path string) string {
	if s := q.Encode(); s != "" {
		return path + "?" + s
	}
	return path
}

// deref follows pointers and interfaces. It returns false for nil.
func deref(x interface{}) (reflect.Value, bool) {
	if x == nil {
		return reflect.Value{}, false
	}
	v := reflect.ValueOf(x)
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		if _, ok := v.Interface().(fmt.Stringer); ok && v.Kind() == reflect.Ptr {
			return v, true
		}
		v = v.Elem()
	}
	return v, true
}

func isSequence(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice:
		return v.Type().Elem().Kind() != reflect.Uint8
	case reflect.Array:
		return true
	default:
		return false
	}
}

func formatValue(v reflect.Value) string {
	v, ok := deref(valueInterface(v))
	if !ok {
		return "null"
	}
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return string(v.Bytes())
		}
	}
	return fmt.Sprint(v.Interface())
}

func valueInterface(v reflect.Value) interface{} {
	if !v.IsValid() || !v.CanInterface() {
		return nil
	}
	return v.Interface()
}
