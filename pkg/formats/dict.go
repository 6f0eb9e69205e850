package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Dictionary errors.
var (
	ErrMissingKey  = errors.New("missing key")
	ErrNoSeparator = errors.New("expected key = value")
)

// ParseError describes a line or value that could not be interpreted.
type ParseError struct {
	Path  string
	Line  int
	Key   string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	case e.Key != "":
		return fmt.Sprintf("%s: key %q value %q: %v", e.Path, e.Key, e.Value, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Dict is a flat key/value asset description, as found in object and
// material files:
//
//	# comment
//	name = rat
//	model = rat
//	weight = 12.5
type Dict struct {
	Path   string
	values map[string]string
}

// NewDict wraps an existing map.
func NewDict(path string, values map[string]string) Dict {
	if values == nil {
		values = make(map[string]string)
	}
	return Dict{Path: path, values: values}
}

// ParseDict parses key = value lines. Blank lines and lines starting
// with '#' are ignored; keys and values are trimmed. A later key
// overrides an earlier one.
func ParseDict(data []byte, path string) (Dict, error) {
	d := NewDict(path, nil)

	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		key, value, ok := strings.Cut(text, "=")
		if !ok {
			return Dict{}, &ParseError{Path: path, Line: line, Err: ErrNoSeparator}
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return Dict{}, &ParseError{Path: path, Line: line, Err: ErrNoSeparator}
		}
		d.values[key] = strings.TrimSpace(value)
	}
	if err := sc.Err(); err != nil {
		return Dict{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return d, nil
}

// LoadDict reads and parses a dictionary file.
func LoadDict(path string) (Dict, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dict{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseDict(data, path)
}

// Has reports whether key is present.
func (d Dict) Has(key string) bool {
	_, ok := d.values[key]
	return ok
}

// Keys returns the keys in sorted order.
func (d Dict) Keys() []string {
	keys := make([]string, 0, len(d.values))
	for k := range d.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns the raw value of key.
func (d Dict) String(key string) (string, error) {
	v, ok := d.values[key]
	if !ok {
		return "", fmt.Errorf("%s: %w %q", d.Path, ErrMissingKey, key)
	}
	return v, nil
}

func (d Dict) parse(key string, conv func(string) error) error {
	v, err := d.String(key)
	if err != nil {
		return err
	}
	if err := conv(v); err != nil {
		return &ParseError{Path: d.Path, Key: key, Value: v, Err: err}
	}
	return nil
}

// Int32 returns key as a signed integer.
func (d Dict) Int32(key string) (int32, error) {
	var out int32
	err := d.parse(key, func(v string) error {
		n, err := strconv.ParseInt(v, 10, 32)
		out = int32(n)
		return err
	})
	return out, err
}

// Float32 returns key as a float.
func (d Dict) Float32(key string) (float32, error) {
	var out float32
	err := d.parse(key, func(v string) error {
		f, err := strconv.ParseFloat(v, 32)
		out = float32(f)
		return err
	})
	return out, err
}

// Bool returns key as a boolean (true/false, 1/0, yes/no).
func (d Dict) Bool(key string) (bool, error) {
	var out bool
	err := d.parse(key, func(v string) error {
		switch strings.ToLower(v) {
		case "yes", "on":
			out = true
			return nil
		case "no", "off":
			out = false
			return nil
		}
		b, err := strconv.ParseBool(v)
		out = b
		return err
	})
	return out, err
}

// Vec2 returns key as two comma or space separated floats.
func (d Dict) Vec2(key string) (mgl32.Vec2, error) {
	var out mgl32.Vec2
	err := d.parse(key, func(v string) error {
		return parseFloats(v, out[:])
	})
	return out, err
}

// Vec3 returns key as three comma or space separated floats.
func (d Dict) Vec3(key string) (mgl32.Vec3, error) {
	var out mgl32.Vec3
	err := d.parse(key, func(v string) error {
		return parseFloats(v, out[:])
	})
	return out, err
}

func parseFloats(v string, dst []float32) error {
	fields := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if len(fields) != len(dst) {
		return fmt.Errorf("expected %d components, got %d", len(dst), len(fields))
	}
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return err
		}
		dst[i] = float32(n)
	}
	return nil
}

// StringOr returns the value of key or def when it is absent.
func (d Dict) StringOr(key, def string) string {
	if v, err := d.String(key); err == nil {
		return v
	}
	return def
}

// Float32Or returns key as a float, or def when absent. A present but
// malformed value is still an error.
func (d Dict) Float32Or(key string, def float32) (float32, error) {
	if !d.Has(key) {
		return def, nil
	}
	return d.Float32(key)
}

// Vec3Or returns key as a vector, or def when absent.
func (d Dict) Vec3Or(key string, def mgl32.Vec3) (mgl32.Vec3, error) {
	if !d.Has(key) {
		return def, nil
	}
	return d.Vec3(key)
}
