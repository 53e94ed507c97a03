// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"path"
	"reflect"
	"strconv"

	"github.com/tidwall/gjson"
)

// PayloadJSONField is the multipart field that carries the
// JSON-encoded Data alongside file uploads.
const PayloadJSONField = "payload_json"

// A BodyKind tags the variant of a Body.
type BodyKind int

const (
	// KindNone is a request without a body.
	KindNone BodyKind = iota
	// KindJSON is a JSON-encoded body.
	KindJSON
	// KindMultipart is a multipart/form-data body.
	KindMultipart
)

var bodyKindNames = [...]string{"none", "json", "multipart"}

// String returns the name of the body kind.
func (k BodyKind) String() string {
	if k < 0 || int(k) >= len(bodyKindNames) {
		return "unknown"
	}
	return bodyKindNames[k]
}

// A Body is an encoded request body. It is always one of NoBody,
// JSONBody or MultipartBody.
type Body interface {
	// Kind returns the variant tag.
	Kind() BodyKind
	// Bytes returns the encoded body, or nil for NoBody.
	Bytes() []byte
	// ContentType returns the Content-Type the body requires, or the
	// empty string for NoBody.
	ContentType() string

	isBody()
}

// NoBody is the Body of a request that sends no content.
type NoBody struct{}

func (NoBody) Kind() BodyKind      { return KindNone }
func (NoBody) Bytes() []byte       { return nil }
func (NoBody) ContentType() string { return "" }
func (NoBody) isBody()             {}

// JSONBody is a Body holding JSON text.
type JSONBody struct {
	Data []byte
}

func (JSONBody) Kind() BodyKind      { return KindJSON }
func (b JSONBody) Bytes() []byte     { return b.Data }
func (JSONBody) ContentType() string { return "application/json" }
func (JSONBody) isBody()             {}

// MultipartBody is a fully encoded multipart/form-data Body.
type MultipartBody struct {
	Data     []byte
	Boundary string
}

func (MultipartBody) Kind() BodyKind  { return KindMultipart }
func (b MultipartBody) Bytes() []byte { return b.Data }
func (b MultipartBody) ContentType() string {
	return mime.FormatMediaType("multipart/form-data", map[string]string{"boundary": b.Boundary})
}
func (MultipartBody) isBody() {}

// An EncodingError reports that part of the request payload could not
// be encoded. Encoding happens while the request is built, so an
// EncodingError is always returned before any network activity or
// timer is started.
type EncodingError struct {
	// Field names what failed: "data", or the multipart field name of
	// a file.
	Field string
	// Err is the underlying error.
	Err error
}

func (err *EncodingError) Error() string {
	return fmt.Sprintf("apireq/request: cannot encode %s: %v", err.Field, err.Err)
}

func (err *EncodingError) Unwrap() error {
	return err.Err
}

// EncodeBody chooses and encodes the body for opts:
//
// • a non-empty Files selects MultipartBody, even if Data is set;
//
// • otherwise a non-null Data selects JSONBody; a nil pointer, map,
// slice or interface counts as null;
//
// • otherwise the body is NoBody.
func EncodeBody(opts *Options) (Body, error) {
	if len(opts.Files) > 0 {
		return encodeMultipart(opts)
	}
	if !isNull(opts.Data) {
		data, err := marshalJSON(opts.Data)
		if err != nil {
			return nil, &EncodingError{Field: "data", Err: err}
		}
		return JSONBody{Data: data}, nil
	}
	return NoBody{}, nil
}

// isNull reports whether x would encode as JSON null.
func isNull(x interface{}) bool {
	v, ok := deref(x)
	if !ok {
		return true
	}
	switch v.Kind() {
	case reflect.Map, reflect.Slice:
		return v.IsNil()
	}
	return false
}

// marshalJSON encodes v without escaping HTML characters, so the text
// on the wire is what a plain JSON serializer would produce.
func marshalJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

type part struct {
	name        string
	filename    string
	contentType string
	data        []byte
}

func encodeMultipart(opts *Options) (Body, error) {
	parts := make([]part, 0, len(opts.Files)+1)
	for _, f := range opts.Files {
		if f.File == nil || f.File == "" {
			continue
		}
		data, err := BodyBytes(f.File)
		if err != nil {
			return nil, &EncodingError{Field: f.FieldName(), Err: err}
		}
		parts = append(parts, part{
			name:        f.FieldName(),
			filename:    f.Name,
			contentType: fileContentType(f),
			data:        data,
		})
	}

	if opts.Data != nil {
		data, err := marshalJSON(opts.Data)
		if err != nil {
			return nil, &EncodingError{Field: "data", Err: err}
		}
		if opts.DontUsePayloadJSON {
			fields, err := flattenFields(data)
			if err != nil {
				return nil, &EncodingError{Field: "data", Err: err}
			}
			parts = append(parts, fields...)
		} else {
			parts = append(parts, part{name: PayloadJSONField, data: data})
		}
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	boundary := partsBoundary(parts)
	if err := w.SetBoundary(boundary); err != nil {
		return nil, &EncodingError{Field: "multipart", Err: err}
	}
	for _, p := range parts {
		if err := writePart(w, p); err != nil {
			return nil, &EncodingError{Field: p.name, Err: err}
		}
	}
	if err := w.Close(); err != nil {
		return nil, &EncodingError{Field: "multipart", Err: err}
	}
	return MultipartBody{Data: buf.Bytes(), Boundary: boundary}, nil
}

func writePart(w *multipart.Writer, p part) error {
	h := make(textproto.MIMEHeader)
	if p.filename == "" {
		h.Set("Content-Disposition", `form-data; name="`+escapeQuotes(p.name)+`"`)
	} else {
		h.Set("Content-Disposition",
			`form-data; name="`+escapeQuotes(p.name)+`"; filename="`+escapeQuotes(p.filename)+`"`)
		h.Set("Content-Type", p.contentType)
	}
	pw, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = pw.Write(p.data)
	return err
}

// flattenFields turns a JSON object into one field per entry, in the
// order the entries appear in the text. String values are sent as-is;
// any other value is sent as its JSON text. A JSON array is flattened
// with the element indexes as field names.
func flattenFields(data []byte) ([]part, error) {
	r := gjson.ParseBytes(data)
	var fields []part
	switch {
	case r.IsObject():
		r.ForEach(func(k, v gjson.Result) bool {
			fields = append(fields, part{name: k.String(), data: []byte(fieldValue(v))})
			return true
		})
	case r.IsArray():
		i := 0
		r.ForEach(func(_, v gjson.Result) bool {
			fields = append(fields, part{name: strconv.Itoa(i), data: []byte(fieldValue(v))})
			i++
			return true
		})
	default:
		return nil, errors.New("flattened data must be a JSON object or array")
	}
	return fields, nil
}

func fieldValue(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.Str
	}
	return v.Raw
}

func fileContentType(f File) string {
	if f.ContentType != "" {
		return f.ContentType
	}
	if ct := mime.TypeByExtension(path.Ext(f.Name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// partsBoundary derives the multipart boundary from the parts
// themselves, so equal parts always encode to equal bytes.
func partsBoundary(parts []part) string {
	h := sha256.New()
	for _, p := range parts {
		for _, s := range []string{p.name, p.filename, p.contentType} {
			_, _ = io.WriteString(h, strconv.Itoa(len(s)))
			_, _ = io.WriteString(h, ":")
			_, _ = io.WriteString(h, s)
		}
		_, _ = io.WriteString(h, strconv.Itoa(len(p.data)))
		_, _ = io.WriteString(h, ":")
		_, _ = h.Write(p.data)
	}
	return "apireq" + hex.EncodeToString(h.Sum(nil)[:24])
}

// escapeQuotes escapes backslashes and double quotes in a
// Content-Disposition parameter value.
func escapeQuotes(s string) string {
	var buf bytes.Buffer
	for _, b := range []byte(s) {
		if b == '"' || b == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(b)
	}
	return buf.String()
}
