package dto

import (
	"credit-approval/internal/pkg/apperrors"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

const msgInvalidDataTypes = "Invalid data types"

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type TokenRequest struct {
	Username string `json:"username"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// FlexibleString accepts either a JSON string or a JSON number, so phone
// numbers may be sent unquoted.
type FlexibleString string

func (s *FlexibleString) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = FlexibleString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = FlexibleString(n.String())
	return nil
}

// requireFields reports the named fields that are absent from the request.
func requireFields(fields []string, present []bool) error {
	var missing []string
	for i, ok := range present {
		if !ok {
			missing = append(missing, fields[i])
		}
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("", "Missing required fields: "+strings.Join(missing, ", "))
	}
	return nil
}

func parseDecimal(field string, n *json.Number) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(n.String()))
	if err != nil {
		return decimal.Zero, apperrors.NewValidationError(field, msgInvalidDataTypes)
	}
	return d, nil
}

func parseFloat(field string, n *json.Number) (float64, error) {
	d, err := parseDecimal(field, n)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// parseInt accepts integral values written as 12, "12" or 12.0.
func parseInt(field string, n *json.Number) (int64, error) {
	d, err := parseDecimal(field, n)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, apperrors.NewValidationError(field, msgInvalidDataTypes)
	}
	return d.IntPart(), nil
}
