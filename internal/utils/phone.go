package utils

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	twilio "github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	lookupsv2 "github.com/twilio/twilio-go/rest/lookups/v2"
)

var (
	usPhoneRegex = regexp.MustCompile(`^\(\d{3}\)\d{3}-\d{4}$`)
	nonDigits    = regexp.MustCompile(`[^0-9]`)
)

// FormatUSPhone normalises arbitrary input to the (NNN)NNN-NNNN display form.
// Non-digits are dropped and anything past the tenth digit is truncated.
// Partial input is formatted progressively, e.g. "55512" -> "(555)12".
func FormatUSPhone(in string) string {
	d := nonDigits.ReplaceAllString(in, "")
	if len(d) > 10 {
		d = d[:10]
	}
	switch {
	case len(d) == 0:
		return ""
	case len(d) <= 3:
		return "(" + d
	case len(d) <= 6:
		return "(" + d[:3] + ")" + d[3:]
	default:
		return "(" + d[:3] + ")" + d[3:6] + "-" + d[6:]
	}
}

// IsUSPhone reports whether s is exactly (NNN)NNN-NNNN.
func IsUSPhone(s string) bool { return usPhoneRegex.MatchString(s) }

// USPhoneToE164 converts (NNN)NNN-NNNN to +1NNNNNNNNNN.
func USPhoneToE164(s string) (string, error) {
	if !IsUSPhone(s) {
		return "", ErrInvalidPhone
	}
	return "+1" + nonDigits.ReplaceAllString(s, ""), nil
}

// PhoneVerifier confirms a syntactically valid number is real.
type PhoneVerifier interface {
	VerifyPhone(ctx context.Context, usPhone string) (bool, error)
}

// TwilioPhoneVerifier checks numbers against Twilio Lookups V2.
type TwilioPhoneVerifier struct {
	client *twilio.RestClient
}

func NewTwilioPhoneVerifier(accountSID, authToken string) *TwilioPhoneVerifier {
	return &TwilioPhoneVerifier{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
	}
}

func (v *TwilioPhoneVerifier) VerifyPhone(ctx context.Context, usPhone string) (bool, error) {
	number, err := USPhoneToE164(usPhone)
	if err != nil {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	country := "US"
	_, err = v.client.LookupsV2.FetchPhoneNumber(number, &lookupsv2.FetchPhoneNumberParams{CountryCode: &country})
	if err == nil {
		return true, nil
	}
	if restErr, ok := err.(*twilioclient.TwilioRestError); ok {
		if restErr.Status == 404 {
			return false, nil
		}
		return false, fmt.Errorf("twilio lookup failed: %d %s", restErr.Status, restErr.Error())
	}
	return false, err
}

// SyntaxOnlyPhoneVerifier accepts every well-formed number.
type SyntaxOnlyPhoneVerifier struct{}

func (SyntaxOnlyPhoneVerifier) VerifyPhone(_ context.Context, usPhone string) (bool, error) {
	return IsUSPhone(strings.TrimSpace(usPhone)), nil
}
