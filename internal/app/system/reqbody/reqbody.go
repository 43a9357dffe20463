// Package reqbody reads create/update bodies sent either as JSON or as a
// form (multipart or urlencoded). Every scalar is exposed as a string so
// handlers parse both encodings the same way.
package reqbody

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
)

var (
	ErrTooLarge  = errors.New("request is too large")
	ErrMalformed = errors.New("invalid request body")
)

// FieldError reports a value that could not be parsed.
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string { return e.Field + " " + e.Msg }

// Body is a parsed request body.
type Body struct {
	values map[string]string
	file   multipart.File
	header *multipart.FileHeader
	form   *multipart.Form
}

// Parse reads r. fileField names the multipart file part to pick up (may be
// empty). maxBytes bounds the whole body.
func Parse(w http.ResponseWriter, r *http.Request, fileField string, maxBytes int64) (*Body, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		return parseMultipart(r, fileField, maxBytes)
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, classify(err)
		}
		return &Body{values: firstValues(r.PostForm)}, nil
	default:
		return parseJSON(r)
	}
}

func parseMultipart(r *http.Request, fileField string, maxBytes int64) (*Body, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, classify(err)
	}
	b := &Body{values: firstValues(r.MultipartForm.Value), form: r.MultipartForm}
	if fileField == "" {
		return b, nil
	}
	file, header, err := r.FormFile(fileField)
	switch {
	case err == nil && header.Size > 0:
		b.file, b.header = file, header
	case err == nil:
		_ = file.Close()
	case !errors.Is(err, http.ErrMissingFile):
		b.Close()
		return nil, classify(err)
	}
	return b, nil
}

func parseJSON(r *http.Request) (*Body, error) {
	raw := map[string]interface{}{}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		if isEmptyBody(err) {
			return &Body{values: map[string]string{}}, nil
		}
		return nil, classify(err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
			values[k] = ""
		case string:
			values[k] = t
		case json.Number:
			values[k] = t.String()
		case bool:
			values[k] = strconv.FormatBool(t)
		default:
			return nil, fmt.Errorf("%w: field %q must be a scalar", ErrMalformed, k)
		}
	}
	return &Body{values: values}, nil
}

func isEmptyBody(err error) bool {
	return errors.Is(err, io.EOF)
}

func classify(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || errors.Is(err, multipart.ErrMessageTooLarge) {
		return ErrTooLarge
	}
	return fmt.Errorf("%w: %v", ErrMalformed, err)
}

func firstValues(m map[string][]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, vs := range m {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}

// Lookup returns the raw value of key and whether it was sent at all.
// A JSON null is reported as present and empty.
func (b *Body) Lookup(key string) (string, bool) {
	v, ok := b.values[key]
	return v, ok
}

// String returns the trimmed value of key, or "" when absent.
func (b *Body) String(key string) string {
	return strings.TrimSpace(b.values[key])
}

// Has reports whether key was sent.
func (b *Body) Has(key string) bool {
	_, ok := b.values[key]
	return ok
}

// Int parses key as an integer. ok is false when the key is absent or blank.
func (b *Body) Int(key string) (n int, ok bool, err error) {
	s := b.String(key)
	if s == "" {
		return 0, false, nil
	}
	n, err = strconv.Atoi(s)
	if err != nil {
		return 0, false, &FieldError{Field: key, Msg: "must be an integer"}
	}
	return n, true, nil
}

// Bool parses key as a boolean. ok is false when the key is absent or blank.
func (b *Body) Bool(key string) (v bool, ok bool, err error) {
	s := b.String(key)
	if s == "" {
		return false, false, nil
	}
	v, err = strconv.ParseBool(s)
	if err != nil {
		return false, false, &FieldError{Field: key, Msg: "must be true or false"}
	}
	return v, true, nil
}

// File returns the uploaded file, if any. The caller must not close it;
// Close releases it.
func (b *Body) File() (multipart.File, *multipart.FileHeader, bool) {
	return b.file, b.header, b.file != nil
}

// Close releases the uploaded file and any temporary files of the form.
func (b *Body) Close() {
	if b == nil {
		return
	}
	if b.file != nil {
		_ = b.file.Close()
	}
	if b.form != nil {
		_ = b.form.RemoveAll()
	}
}

// DecodeJSON decodes a JSON body into v, bounding it by maxBytes.
func DecodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return classify(err)
	}
	return nil
}
