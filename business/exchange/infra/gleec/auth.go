package gleec

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/clock"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/httpclient"
)

// NewSigner returns an HS256 request signer for the venue's private API.
//
// The signed message is METHOD + path + "?" + query (query part only when
// present) + body + timestamp (ms) + window. The signature is the hex HMAC
// SHA-256 of the message under the API secret, and the header value is
//
//	Authorization: HS256 base64(apiKey:signature:timestamp:window)
func NewSigner(apiKey, secretKey string, windowMs int64, clk clock.Clock) httpclient.Signer {
	return func(method, path, query string, body []byte) map[string]string {
		timestamp := strconv.FormatInt(clk.Now().UnixMilli(), 10)
		window := strconv.FormatInt(windowMs, 10)

		msg := method + path
		if query != "" {
			msg += "?" + query
		}
		msg += string(body) + timestamp + window

		mac := hmac.New(sha256.New, []byte(secretKey))
		mac.Write([]byte(msg))
		signature := hex.EncodeToString(mac.Sum(nil))

		token := apiKey + ":" + signature + ":" + timestamp + ":" + window
		return map[string]string{
			"Authorization": "HS256 " + base64.StdEncoding.EncodeToString([]byte(token)),
		}
	}
}
