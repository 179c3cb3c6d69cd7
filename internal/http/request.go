package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	"savings/internal/core"
)

const maxBodyBytes = 64 << 10

// flexString accepts a JSON string or any bare JSON value (numbers mostly)
// and keeps its text; coercion to an amount happens later.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*f = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		*f = flexString(b)
	}
	return nil
}

type jsonRecordInput struct {
	Date                  flexString `json:"date"`
	GoldInCoins           flexString `json:"goldInCoins"`
	GoldConversionValue   flexString `json:"goldConversionValue"`
	Investments           flexString `json:"investments"`
	BankCertificates      flexString `json:"bankCertificates"`
	DollarsInUSD          flexString `json:"dollarsInUSD"`
	DollarConversionValue flexString `json:"dollarConversionValue"`
	CashSavings           flexString `json:"cashSavings"`
}

func (j jsonRecordInput) raw() core.RawInput {
	return core.RawInput{
		Date:                  string(j.Date),
		GoldInCoins:           string(j.GoldInCoins),
		GoldConversionValue:   string(j.GoldConversionValue),
		Investments:           string(j.Investments),
		BankCertificates:      string(j.BankCertificates),
		DollarsInUSD:          string(j.DollarsInUSD),
		DollarConversionValue: string(j.DollarConversionValue),
		CashSavings:           string(j.CashSavings),
	}
}

// decodeRecordInput reads a snapshot from a JSON or form-encoded body.
func (s *Server) decodeRecordInput(w http.ResponseWriter, r *http.Request) (core.RawInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body jsonRecordInput
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return core.RawInput{}, fmt.Errorf("decode json body: %w", err)
		}
		return body.raw(), nil
	}

	if err := r.ParseForm(); err != nil {
		return core.RawInput{}, fmt.Errorf("parse form: %w", err)
	}
	var raw core.RawInput
	if err := s.decoder.Decode(&raw, r.PostForm); err != nil {
		return core.RawInput{}, fmt.Errorf("decode form: %w", err)
	}
	return raw, nil
}

// decodeQuery reads a (possibly partial) snapshot from the query string.
func (s *Server) decodeQuery(r *http.Request) (core.RawInput, error) {
	var raw core.RawInput
	if err := s.decoder.Decode(&raw, r.URL.Query()); err != nil {
		return core.RawInput{}, fmt.Errorf("decode query: %w", err)
	}
	return raw, nil
}
