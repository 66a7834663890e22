package utils

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidNumber = errors.New("invalid number")
	ErrNegative      = errors.New("value must not be negative")
)

// ParseCallback splits telebot callback data ("\fflt_model:OCEAN") into the
// action and its arguments.
func ParseCallback(data string) (string, []string) {
	data = strings.TrimPrefix(data, "\f")
	if i := strings.Index(data, "|"); i >= 0 {
		data = data[:i]
	}

	parts := strings.Split(data, ":")
	return parts[0], parts[1:]
}

// ParseThreshold reads a confidence threshold. Both "0.7" and "0,7" are accepted.
func ParseThreshold(text string) (float64, error) {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", ".")

	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidNumber
	}

	return v, nil
}

// ParseSalary reads a non-negative whole amount, ignoring spaces between digit groups.
func ParseSalary(text string) (int, error) {
	text = strings.Join(strings.Fields(text), "")
	text = strings.TrimSuffix(text, "₽")

	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, ErrInvalidNumber
	}
	if v < 0 {
		return 0, ErrNegative
	}

	return v, nil
}
