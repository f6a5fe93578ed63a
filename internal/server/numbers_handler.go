package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/numplan/numplan/internal/httputil"
	"github.com/numplan/numplan/phonenumber"
)

// numberView is the JSON rendering of a parsed number shared by the parse,
// validate, and find responses.
type numberView struct {
	CountryCode    int    `json:"country_code"`
	NationalNumber uint64 `json:"national_number"`
	Extension      string `json:"extension,omitempty"`
	LeadingZeros   int    `json:"leading_zeros,omitempty"`
	E164           string `json:"e164"`
	International  string `json:"international"`
	National       string `json:"national"`
	Region         string `json:"region,omitempty"`
	Type           string `json:"type"`
	Valid          bool   `json:"valid"`
	Possible       bool   `json:"possible"`
}

func (s *Server) viewOf(number *phonenumber.PhoneNumber) numberView {
	return numberView{
		CountryCode:    number.CountryCode,
		NationalNumber: number.NationalNumber,
		Extension:      number.Extension,
		LeadingZeros:   number.LeadingZeros(),
		E164:           s.engine.Format(number, phonenumber.FormatE164),
		International:  s.engine.Format(number, phonenumber.FormatInternational),
		National:       s.engine.Format(number, phonenumber.FormatNational),
		Region:         s.engine.RegionCodeForNumber(number),
		Type:           s.engine.GetNumberType(number).String(),
		Valid:          s.engine.IsValidNumber(number),
		Possible:       s.engine.IsPossibleNumber(number),
	}
}

// writeParseError maps the closed parse-failure taxonomy onto a 422 with a
// machine-readable error code.
func writeParseError(w http.ResponseWriter, err error) {
	code := "NOT_A_NUMBER"
	switch {
	case errors.Is(err, phonenumber.ErrInvalidCountryCode):
		code = "INVALID_COUNTRY_CODE"
	case errors.Is(err, phonenumber.ErrTooShortAfterIDD):
		code = "TOO_SHORT_AFTER_IDD"
	case errors.Is(err, phonenumber.ErrTooShortNSN):
		code = "TOO_SHORT_NSN"
	case errors.Is(err, phonenumber.ErrTooLong):
		code = "TOO_LONG"
	}
	httputil.WriteFieldError(w, http.StatusUnprocessableEntity, "could not parse phone number",
		"number", code, err.Error())
}

func (s *Server) regionOrDefault(region string) string {
	if region == "" {
		return s.cfg.Engine.DefaultRegion
	}
	return strings.ToUpper(region)
}

type parseRequest struct {
	Number       string `json:"number"`
	Region       string `json:"region"`
	KeepRawInput bool   `json:"keep_raw_input"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if req.Number == "" {
		httputil.WriteError(w, http.StatusBadRequest, "number is required")
		return
	}
	region := s.regionOrDefault(req.Region)
	var (
		number *phonenumber.PhoneNumber
		err    error
	)
	if req.KeepRawInput {
		number, err = s.engine.ParseAndKeepRawInput(req.Number, region)
	} else {
		number, err = s.engine.Parse(req.Number, region)
	}
	if err != nil {
		writeParseError(w, err)
		return
	}
	resp := map[string]any{"number": s.viewOf(number)}
	if req.KeepRawInput {
		resp["raw_input"] = number.RawInput
		resp["country_code_source"] = number.CountryCodeSource.String()
		if number.PreferredDomesticCarrierCode != "" {
			resp["carrier_code"] = number.PreferredDomesticCarrierCode
		}
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

type validateRequest struct {
	Number string `json:"number"`
	Region string `json:"region"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if req.Number == "" {
		httputil.WriteError(w, http.StatusBadRequest, "number is required")
		return
	}
	number, err := s.engine.Parse(req.Number, s.regionOrDefault(req.Region))
	if err != nil {
		writeParseError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"valid":       s.engine.IsValidNumber(number),
		"possible":    s.engine.IsPossibleNumber(number),
		"possibility": s.engine.IsPossibleNumberWithReason(number).String(),
		"type":        s.engine.GetNumberType(number).String(),
		"region":      s.engine.RegionCodeForNumber(number),
	})
}

type formatRequest struct {
	Number      string `json:"number"`
	Region      string `json:"region"`
	Format      string `json:"format"`
	CarrierCode string `json:"carrier_code"`
}

func formatStyle(name string) (phonenumber.NumberFormat, bool) {
	switch strings.ToUpper(name) {
	case "", "E164":
		return phonenumber.FormatE164, true
	case "INTERNATIONAL":
		return phonenumber.FormatInternational, true
	case "NATIONAL":
		return phonenumber.FormatNational, true
	case "RFC3966":
		return phonenumber.FormatRFC3966, true
	}
	return 0, false
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	var req formatRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if req.Number == "" {
		httputil.WriteError(w, http.StatusBadRequest, "number is required")
		return
	}
	style, ok := formatStyle(req.Format)
	if !ok {
		httputil.WriteFieldError(w, http.StatusBadRequest, "invalid format",
			"format", "UNKNOWN_FORMAT", "must be E164, INTERNATIONAL, NATIONAL, or RFC3966")
		return
	}
	number, err := s.engine.Parse(req.Number, s.regionOrDefault(req.Region))
	if err != nil {
		writeParseError(w, err)
		return
	}
	var formatted string
	if req.CarrierCode != "" {
		formatted = s.engine.FormatNationalNumberWithCarrierCode(number, req.CarrierCode)
	} else {
		formatted = s.engine.Format(number, style)
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"formatted": formatted,
		"format":    style.String(),
	})
}

type findRequest struct {
	Text     string `json:"text"`
	Region   string `json:"region"`
	Leniency string `json:"leniency"`
	MaxTries int    `json:"max_tries"`
}

func leniencyByName(name string) (phonenumber.Leniency, bool) {
	switch strings.ToLower(name) {
	case "possible":
		return phonenumber.LeniencyPossible, true
	case "", "valid":
		return phonenumber.LeniencyValid, true
	case "strict_grouping":
		return phonenumber.LeniencyStrictGrouping, true
	case "exact_grouping":
		return phonenumber.LeniencyExactGrouping, true
	}
	return 0, false
}

func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	var req findRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if req.Text == "" {
		httputil.WriteError(w, http.StatusBadRequest, "text is required")
		return
	}
	leniencyName := req.Leniency
	if leniencyName == "" {
		leniencyName = s.cfg.Engine.MatcherLeniency
	}
	leniency, ok := leniencyByName(leniencyName)
	if !ok {
		httputil.WriteFieldError(w, http.StatusBadRequest, "invalid leniency",
			"leniency", "UNKNOWN_LENIENCY", "must be possible, valid, strict_grouping, or exact_grouping")
		return
	}
	maxTries := req.MaxTries
	if maxTries <= 0 {
		maxTries = s.cfg.Engine.MatcherMaxTries
	}
	matches := s.engine.FindNumbers(req.Text, s.regionOrDefault(req.Region), leniency, maxTries)
	out := make([]map[string]any, 0, len(matches))
	for _, m := range matches {
		out = append(out, map[string]any{
			"start":  m.Start,
			"end":    m.End,
			"raw":    m.Raw,
			"number": s.viewOf(m.Number),
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"matches": out,
		"count":   len(out),
	})
}

type matchRequest struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if req.First == "" || req.Second == "" {
		httputil.WriteError(w, http.StatusBadRequest, "first and second are required")
		return
	}
	result := s.engine.IsNumberMatchWithStrings(req.First, req.Second)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"match": result.String(),
	})
}
