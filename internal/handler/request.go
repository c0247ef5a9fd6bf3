package handler

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ErrInvalidNumber is returned for coordinates that are not finite numbers.
var ErrInvalidNumber = errors.New("invalid number")

// FlexID accepts an id sent either as a JSON number or as a numeric string.
// Empty strings and null decode to zero.
type FlexID uint

func (id *FlexID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(string(bytes.TrimSpace(b)), `"`))
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", s)
	}
	*id = FlexID(v)
	return nil
}

// FlexFloat is FlexID for coordinates.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(string(bytes.TrimSpace(b)), `"`))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w %q", ErrInvalidNumber, s)
	}
	*f = FlexFloat(v)
	return nil
}

// ParseBody decodes a JSON request body. An empty body leaves dst untouched.
// The Content-Type header is not required.
func ParseBody(c *fiber.Ctx, dst any) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return c.App().Config().JSONDecoder(body, dst)
}

func badBody(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrInvalidNumber) {
		return Fail(c, fiber.StatusBadRequest, "Invalid number.")
	}
	return Fail(c, fiber.StatusBadRequest, "Invalid request body.")
}

// queryID reads an optional numeric query parameter.
func queryID(c *fiber.Ctx, key string) (*uint, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", key, raw)
	}
	id := uint(v)
	return &id, nil
}
