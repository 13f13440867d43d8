package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/primetrades/gofutures/fapi/signing"
	"github.com/primetrades/gofutures/fapi/types"
)

const (
	// ProductionBaseURL 生产环境 Futures API
	ProductionBaseURL = "https://fapi.binance.com"
	// TestnetBaseURL 测试网 Futures API
	TestnetBaseURL = "https://testnet.binancefuture.com"
)

var clientLog = logrus.WithField("component", "fapi_client")

// GatewayError 网关错误：交易所拒绝（API 层 {code,msg}）或传输失败。
// 按原样向上传递，不做自动重试。
type GatewayError struct {
	StatusCode int
	API        *types.APIError // 交易所返回的结构化错误（可选）
	Err        error           // 传输层错误（可选）
}

func (e *GatewayError) Error() string {
	if e.API != nil {
		return fmt.Sprintf("gateway: HTTP %d, %s", e.StatusCode, e.API.Error())
	}
	if e.Err != nil {
		return fmt.Sprintf("gateway: %v", e.Err)
	}
	return fmt.Sprintf("gateway: HTTP %d", e.StatusCode)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Client Binance USDⓈ-M Futures 网关客户端。
// 基于 resty：带超时、429 限流按 Retry-After 退避后重试。
// 超时/传输失败不自动重试——请求不携带服务端幂等保证，重试可能重复下单。
type Client struct {
	http   *resty.Client
	signer *signing.Signer
}

// New 创建网关客户端
func New(baseURL string, signer *signing.Signer, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// resty 会自动从环境变量读取代理配置（HTTP_PROXY / HTTPS_PROXY）
	hc := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("X-MBX-APIKEY", signer.APIKey()).
		// 仅对 429 重试：限流拒绝意味着请求未被执行，重试不会重复下单
		SetRetryCount(2).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return resp != nil && resp.StatusCode() == http.StatusTooManyRequests
		}).
		SetRetryAfter(func(c *resty.Client, resp *resty.Response) (time.Duration, error) {
			// 429 限流：优先使用 Retry-After 头
			if resp.StatusCode() == http.StatusTooManyRequests {
				if retryAfter := resp.Header().Get("Retry-After"); retryAfter != "" {
					if d, err := time.ParseDuration(retryAfter + "s"); err == nil {
						return d, nil
					}
				}
				return 10 * time.Second, nil
			}
			return 0, nil
		})

	return &Client{http: hc, signer: signer}
}

// doSigned 发送签名请求并解析响应。所有签名请求的参数都走 query string
// （Binance Futures 对 POST 同样接受 query 参数）。
func (c *Client) doSigned(ctx context.Context, method, endpoint string, params url.Values, out any) error {
	query := c.signer.Sign(params)

	req := c.http.R().SetContext(ctx).SetQueryString(query)

	var (
		resp *resty.Response
		err  error
	)
	switch method {
	case http.MethodGet:
		resp, err = req.Get(endpoint)
	case http.MethodPost:
		resp, err = req.Post(endpoint)
	case http.MethodDelete:
		resp, err = req.Delete(endpoint)
	default:
		return fmt.Errorf("不支持的请求方法: %s", method)
	}
	if err != nil {
		return &GatewayError{Err: errors.Wrapf(err, "%s %s", method, endpoint)}
	}

	if resp.StatusCode() != http.StatusOK {
		gerr := &GatewayError{StatusCode: resp.StatusCode()}
		var apiErr types.APIError
		if jsonErr := json.Unmarshal(resp.Body(), &apiErr); jsonErr == nil && apiErr.Code != 0 {
			gerr.API = &apiErr
		}
		clientLog.Errorf("API 请求失败: %s %s -> %s", method, endpoint, gerr)
		return gerr
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return &GatewayError{Err: errors.Wrap(err, "解析响应失败")}
		}
	}
	return nil
}

// Ping 连通性检查（GET /fapi/v1/ping，无需签名）
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/fapi/v1/ping")
	if err != nil {
		return &GatewayError{Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return &GatewayError{StatusCode: resp.StatusCode()}
	}
	return nil
}

// GetAccountInfo 获取账户信息（GET /fapi/v2/account）
func (c *Client) GetAccountInfo(ctx context.Context) (*types.AccountSnapshot, error) {
	var snapshot types.AccountSnapshot
	if err := c.doSigned(ctx, http.MethodGet, "/fapi/v2/account", url.Values{}, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// GetBalance 获取指定资产的可用余额。资产不存在时返回 0，不视为错误。
func (c *Client) GetBalance(ctx context.Context, asset string) (types.AssetBalance, error) {
	snapshot, err := c.GetAccountInfo(ctx)
	if err != nil {
		return types.AssetBalance{}, err
	}
	for _, b := range snapshot.Assets {
		if b.Asset == asset {
			return b, nil
		}
	}
	clientLog.Warnf("账户中未找到资产 %s", asset)
	return types.AssetBalance{Asset: asset}, nil
}

// GetPrice 获取最新价格（GET /fapi/v1/ticker/price，无需签名）
func (c *Client) GetPrice(ctx context.Context, symbol string) (*types.SymbolPrice, error) {
	var price types.SymbolPrice
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		Get("/fapi/v1/ticker/price")
	if err != nil {
		return nil, &GatewayError{Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		gerr := &GatewayError{StatusCode: resp.StatusCode()}
		var apiErr types.APIError
		if jsonErr := json.Unmarshal(resp.Body(), &apiErr); jsonErr == nil && apiErr.Code != 0 {
			gerr.API = &apiErr
		}
		return nil, gerr
	}
	if err := json.Unmarshal(resp.Body(), &price); err != nil {
		return nil, &GatewayError{Err: errors.Wrap(err, "解析价格响应失败")}
	}
	return &price, nil
}

// SubmitOrder 提交订单（POST /fapi/v1/order）
func (c *Client) SubmitOrder(ctx context.Context, params types.OrderParams) (*types.OrderResult, error) {
	v := url.Values{}
	v.Set("symbol", params.Symbol)
	v.Set("side", string(params.Side))
	v.Set("type", string(params.Type))
	v.Set("quantity", params.Quantity.String())
	if !params.Price.IsZero() {
		v.Set("price", params.Price.String())
	}
	if !params.StopPrice.IsZero() {
		v.Set("stopPrice", params.StopPrice.String())
	}
	if params.TimeInForce != "" {
		v.Set("timeInForce", string(params.TimeInForce))
	}
	if params.ClientOrderID != "" {
		v.Set("newClientOrderId", params.ClientOrderID)
	}

	var result types.OrderResult
	if err := c.doSigned(ctx, http.MethodPost, "/fapi/v1/order", v, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetOrderStatus 查询订单状态（GET /fapi/v1/order）
func (c *Client) GetOrderStatus(ctx context.Context, symbol string, orderID int64) (*types.OrderResult, error) {
	v := url.Values{}
	v.Set("symbol", symbol)
	v.Set("orderId", fmt.Sprintf("%d", orderID))

	var result types.OrderResult
	if err := c.doSigned(ctx, http.MethodGet, "/fapi/v1/order", v, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListOpenOrders 查询当前挂单（GET /fapi/v1/openOrders）。
// symbol 为空时返回全部交易对的挂单。
func (c *Client) ListOpenOrders(ctx context.Context, symbol string) ([]types.OrderResult, error) {
	v := url.Values{}
	if symbol != "" {
		v.Set("symbol", symbol)
	}

	var results []types.OrderResult
	if err := c.doSigned(ctx, http.MethodGet, "/fapi/v1/openOrders", v, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// CancelOrder 撤单（DELETE /fapi/v1/order）
func (c *Client) CancelOrder(ctx context.Context, symbol string, orderID int64) (*types.CancelResult, error) {
	v := url.Values{}
	v.Set("symbol", symbol)
	v.Set("orderId", fmt.Sprintf("%d", orderID))

	var result types.CancelResult
	if err := c.doSigned(ctx, http.MethodDelete, "/fapi/v1/order", v, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
