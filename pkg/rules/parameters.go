package rules

import (
	"strconv"
	"strings"
	"time"
)

// Parameters are the named string parameters a step is configured with.
// Values are validated when read, not when the step is built.
type Parameters map[string]string

// String returns a required parameter
func (p Parameters) String(name string) (string, error) {
	v := strings.TrimSpace(p[name])
	if v == "" {
		return "", &ParameterError{Name: name, Err: ErrExpectedTaskParameter}
	}
	return v, nil
}

// StringOr returns a parameter or def when it is not set
func (p Parameters) StringOr(name, def string) string {
	if v := strings.TrimSpace(p[name]); v != "" {
		return v
	}
	return def
}

// Int returns a required integer parameter
func (p Parameters) Int(name string) (int, error) {
	v, err := p.String(name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ParameterError{Name: name, Value: v, Reason: "not an integer", Err: ErrInvalidParameter}
	}
	return n, nil
}

// IntOr returns an integer parameter or def when it is not set
func (p Parameters) IntOr(name string, def int) (int, error) {
	if strings.TrimSpace(p[name]) == "" {
		return def, nil
	}
	return p.Int(name)
}

// Int64Or returns a 64 bit integer parameter or def when it is not set
func (p Parameters) Int64Or(name string, def int64) (int64, error) {
	v := strings.TrimSpace(p[name])
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, &ParameterError{Name: name, Value: v, Reason: "not an integer", Err: ErrInvalidParameter}
	}
	return n, nil
}

// BoolOr returns a boolean parameter or def when it is not set
func (p Parameters) BoolOr(name string, def bool) (bool, error) {
	v := strings.TrimSpace(p[name])
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, &ParameterError{Name: name, Value: v, Reason: "not a boolean", Err: ErrInvalidParameter}
	}
	return b, nil
}

// DurationOr returns a duration parameter or def when it is not set. Plain
// integers are taken as seconds.
func (p Parameters) DurationOr(name string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(p[name])
	if v == "" {
		return def, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, &ParameterError{Name: name, Value: v, Reason: "not a duration", Err: ErrInvalidParameter}
	}
	return d, nil
}
