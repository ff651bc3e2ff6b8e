// cryptopay-platform/services/jazzcash_client.go
package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// JazzCashClient talks to the JazzCash mobile-wallet API. It owns the wire
// protocol: merchant transaction ids, the keyed integrity hash over sorted
// request parameters, and response parsing. Callers only see success/failure
// plus the raw gateway payload.
type JazzCashClient struct {
	MerchantID    string
	Password      string
	IntegritySalt string
	APIURL        string
	ReturnURL     string
	Client        *http.Client
}

// PaymentRequest is one outbound DoTransaction attempt.
type PaymentRequest struct {
	MerchantTransactionID string
	Amount                decimal.Decimal
	Phone                 string
	Email                 string
	FullName              string
}

// PaymentResult carries the gateway verdict and its raw payload.
type PaymentResult struct {
	Success         bool
	ResponseCode    string
	ResponseMessage string
	Raw             map[string]string
}

const jazzCashTimeFormat = "20060102T150405"

func NewJazzCashClient() *JazzCashClient {
	apiURL := os.Getenv("JAZZCASH_API_URL")
	if apiURL == "" {
		apiURL = "https://payments.jazzcash.com.pk/ApplicationAPI/API/Payment/DoTransaction"
	}
	return &JazzCashClient{
		MerchantID:    os.Getenv("JAZZCASH_MERCHANT_ID"),
		Password:      os.Getenv("JAZZCASH_PASSWORD"),
		IntegritySalt: os.Getenv("JAZZCASH_INTEGRITY_SALT"),
		APIURL:        apiURL,
		ReturnURL:     os.Getenv("JAZZCASH_RETURN_URL"),
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GenerateMerchantTransactionID returns a unique local reference correlating
// an outbound attempt with its eventual callback.
func GenerateMerchantTransactionID() string {
	return fmt.Sprintf("CP_%d_%d", time.Now().UnixMilli(), rand.Intn(1000))
}

// SecureHash computes the keyed integrity hash: the values of every present
// parameter concatenated with '&' in alphabetical key order, HMAC-SHA256
// under the integrity salt, upper-case hex. The caller controls which fields
// participate — outbound signing includes an empty pp_SecureHash slot, while
// callback verification drops the field first.
func (c *JazzCashClient) SecureHash(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = params[k]
	}

	mac := hmac.New(sha256.New, []byte(c.IntegritySalt))
	mac.Write([]byte(strings.Join(values, "&")))
	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}

// VerifyCallback recomputes the hash over the callback parameters minus the
// pp_SecureHash field and compares it against the supplied value. A mismatch
// means the callback must not mutate any payment state.
func (c *JazzCashClient) VerifyCallback(params map[string]string) bool {
	received := params["pp_SecureHash"]
	if received == "" {
		return false
	}

	rest := make(map[string]string, len(params))
	for k, v := range params {
		if k == "pp_SecureHash" {
			continue
		}
		rest[k] = v
	}

	expected := c.SecureHash(rest)
	return hmac.Equal([]byte(received), []byte(expected))
}

// DoTransaction posts a mobile-wallet payment to JazzCash and reports the
// gateway verdict. The amount is converted to paisa; the request expires
// gateway-side after 30 minutes.
func (c *JazzCashClient) DoTransaction(req PaymentRequest) (*PaymentResult, error) {
	now := time.Now().UTC()
	params := map[string]string{
		"pp_Version":            "1.1",
		"pp_TxnType":            "MWALLET",
		"pp_Language":           "EN",
		"pp_MerchantID":         c.MerchantID,
		"pp_SubMerchantID":      "",
		"pp_Password":           c.Password,
		"pp_BankID":             "TBANK",
		"pp_ProductID":          "RETL",
		"pp_TxnRefNo":           req.MerchantTransactionID,
		"pp_Amount":             req.Amount.Shift(2).Truncate(0).String(), // paisa
		"pp_TxnCurrency":        "PKR",
		"pp_TxnDateTime":        now.Format(jazzCashTimeFormat) + "0000",
		"pp_BillReference":      req.MerchantTransactionID,
		"pp_Description":        fmt.Sprintf("CryptoPay Investment - %s USD", req.Amount.StringFixed(2)),
		"pp_TxnExpiryDateTime":  now.Add(30 * time.Minute).Format(jazzCashTimeFormat) + "0000",
		"pp_ReturnURL":          c.ReturnURL,
		"ppmpf_1":               req.Phone,
		"ppmpf_2":               req.Email,
		"ppmpf_3":               req.FullName,
		"ppmpf_4":               "",
		"ppmpf_5":               "",
		// the empty slot participates in the outbound signature
		"pp_SecureHash": "",
	}
	params["pp_SecureHash"] = c.SecureHash(params)

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	httpReq, err := http.NewRequest("POST", c.APIURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	raw := ParseGatewayResponse(string(body))
	if raw["pp_ResponseCode"] == "" {
		log.Printf("JazzCash returned unparseable response: %.200s", string(body))
		return nil, fmt.Errorf("unparseable gateway response")
	}

	return &PaymentResult{
		Success:         raw["pp_ResponseCode"] == "000",
		ResponseCode:    raw["pp_ResponseCode"],
		ResponseMessage: raw["pp_ResponseMessage"],
		Raw:             raw,
	}, nil
}

// ParseGatewayResponse handles both payload shapes JazzCash sends back: a
// JSON object or a urlencoded query string.
func ParseGatewayResponse(body string) map[string]string {
	out := map[string]string{}

	trimmed := strings.TrimSpace(body)
	if strings.HasPrefix(trimmed, "{") {
		var generic map[string]interface{}
		if err := json.Unmarshal([]byte(trimmed), &generic); err == nil {
			for k, v := range generic {
				out[k] = fmt.Sprintf("%v", v)
			}
			return out
		}
	}

	values, err := url.ParseQuery(trimmed)
	if err != nil {
		return out
	}
	for k, vs := range values {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}
