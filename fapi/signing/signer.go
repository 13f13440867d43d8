package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"time"
)

// Signer Binance USDⓈ-M Futures 请求签名器。
// 签名方式：对 urlencode 后的请求参数（含毫秒 timestamp）做 HMAC-SHA256，
// hex 编码后以 signature 参数附加；API key 通过 X-MBX-APIKEY 头携带。
type Signer struct {
	apiKey    string
	apiSecret []byte
	// now 可注入时钟，测试用
	now func() time.Time
}

// NewSigner 创建签名器
func NewSigner(apiKey, apiSecret string) *Signer {
	return &Signer{
		apiKey:    apiKey,
		apiSecret: []byte(apiSecret),
		now:       time.Now,
	}
}

// APIKey 返回 API key（用于请求头）
func (s *Signer) APIKey() string {
	return s.apiKey
}

// Sign 为请求参数附加 timestamp 与 signature，返回最终 query string。
// 注意：签名覆盖的是编码后的参数串，参数顺序由 url.Values.Encode 决定（按 key 排序）。
func (s *Signer) Sign(params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("timestamp", strconv.FormatInt(s.now().UnixMilli(), 10))

	// signature 必须覆盖实际发送的参数串，所以直接拼接在末尾而不是再次编码
	query := params.Encode()
	return query + "&signature=" + s.signature(query)
}

// signature 计算 HMAC-SHA256 十六进制签名
func (s *Signer) signature(payload string) string {
	mac := hmac.New(sha256.New, s.apiSecret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
