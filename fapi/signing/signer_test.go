package signing

import (
	"net/url"
	"strings"
	"testing"
	"time"
)

func fixedSigner() *Signer {
	s := NewSigner("test-key", "test-secret")
	s.now = func() time.Time {
		return time.UnixMilli(1700000000000)
	}
	return s
}

// TestSignKnownVector 已知向量：对排序后的参数串做 HMAC-SHA256
func TestSignKnownVector(t *testing.T) {
	s := fixedSigner()

	params := url.Values{}
	params.Set("symbol", "BTCUSDT")
	params.Set("side", "BUY")
	params.Set("quantity", "0.01")

	query := s.Sign(params)

	want := "quantity=0.01&side=BUY&symbol=BTCUSDT&timestamp=1700000000000" +
		"&signature=ae65c0674d9112a81873ea7077755e1efbd6b27aced6460dbe541af9c60f22ea"
	if query != want {
		t.Errorf("签名串不匹配\n期望: %s\n实际: %s", want, query)
	}
}

// TestSignEmptyParams 空参数也要携带 timestamp 与 signature
func TestSignEmptyParams(t *testing.T) {
	s := fixedSigner()

	query := s.Sign(nil)
	want := "timestamp=1700000000000" +
		"&signature=dccf2651b1d8329665bfddb0798eccd4650d986a9cfe5547b2f5822131e7620b"
	if query != want {
		t.Errorf("签名串不匹配\n期望: %s\n实际: %s", want, query)
	}
}

// TestSignatureAppendedLast signature 必须位于参数串末尾（覆盖其余全部参数）
func TestSignatureAppendedLast(t *testing.T) {
	s := fixedSigner()

	params := url.Values{}
	params.Set("zzz", "1")
	query := s.Sign(params)

	idx := strings.Index(query, "&signature=")
	if idx < 0 || strings.Contains(query[idx+1:], "&") {
		t.Errorf("signature 应为末尾参数: %s", query)
	}
}

// TestAPIKey API key 原样返回（用于 X-MBX-APIKEY 头）
func TestAPIKey(t *testing.T) {
	if got := NewSigner("k", "s").APIKey(); got != "k" {
		t.Errorf("APIKey 应为 k，实际为 %s", got)
	}
}
