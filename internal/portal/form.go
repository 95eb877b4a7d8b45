package portal

import (
	"context"
	"math"
	"strconv"
	"strings"
)

const submitSuccessMessage = "Request submitted successfully!"

// RequestForm models the submission form: free-text fields, loose numeric
// coercion and the clear-on-success behavior farmers are used to.
type RequestForm struct {
	client *Client

	Area    string
	Power   string
	Purpose string

	Message string
	Err     string
}

func NewRequestForm(client *Client) *RequestForm {
	return &RequestForm{client: client}
}

// coerceNumber mirrors loose form-input conversion: blank input counts as
// zero and anything non-numeric becomes NaN, which the API serializes as
// null and rejects.
func coerceNumber(raw string) float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return math.NaN()
	}
	return value
}

// Submit posts the form. On success the fields are cleared and the
// success message set; on failure the input is kept so the farmer can
// correct it.
func (f *RequestForm) Submit(ctx context.Context) error {
	f.Message = ""
	f.Err = ""

	_, err := f.client.SubmitRequest(ctx, strings.TrimSpace(f.Area), coerceNumber(f.Power), strings.TrimSpace(f.Purpose))
	if err != nil {
		f.Err = ErrorCode(err)
		return err
	}

	f.Area = ""
	f.Power = ""
	f.Purpose = ""
	f.Message = submitSuccessMessage
	return nil
}
