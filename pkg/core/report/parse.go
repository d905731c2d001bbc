package report

import (
	"encoding/json"
	"errors"
	"fmt"

	"creator_mind/pkg/core/utils"
)

// ErrResultParse matches every *ResultParseError via errors.Is.
var ErrResultParse = errors.New("failed to parse analysis results")

var errNoObject = errors.New("no JSON object in response")

// ResultParseError means the model answered but the answer could not be
// read as an AnalysisResult.
type ResultParseError struct {
	Raw string // response excerpt, for logs
	Err error
}

func (e *ResultParseError) Error() string {
	return fmt.Sprintf("%v: %v", ErrResultParse, e.Err)
}

func (e *ResultParseError) Unwrap() error { return e.Err }

func (e *ResultParseError) Is(target error) bool { return target == ErrResultParse }

const rawExcerptLen = 512

// ParseResult pulls the JSON object out of a model response and decodes it.
// Standard decoding is tried first, then json-repair, then hjson. Defaults
// are not applied here.
func ParseResult(raw string) (*AnalysisResult, error) {
	obj, ok := utils.ExtractJSONObject(raw)
	if !ok {
		return nil, &ResultParseError{Raw: excerpt(raw), Err: errNoObject}
	}

	var generic map[string]any
	clean, err := utils.SmartParse(obj, &generic)
	if err != nil {
		return nil, &ResultParseError{Raw: excerpt(raw), Err: err}
	}

	var res AnalysisResult
	if err := json.Unmarshal([]byte(clean), &res); err != nil {
		return nil, &ResultParseError{Raw: excerpt(raw), Err: err}
	}
	return &res, nil
}

func excerpt(s string) string {
	r := []rune(s)
	if len(r) <= rawExcerptLen {
		return s
	}
	return string(r[:rawExcerptLen]) + "…"
}
