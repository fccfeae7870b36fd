package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultWechatBaseURL = "https://api.weixin.qq.com"

// WechatError is the provider-side failure of the identity exchange, with the
// provider's code and message preserved for the caller.
type WechatError struct {
	Code int
	Msg  string
}

func (e *WechatError) Error() string {
	return fmt.Sprintf("wechat api error: %d - %s", e.Code, e.Msg)
}

// WechatSession is the result of exchanging a one-time login code.
type WechatSession struct {
	OpenID     string
	SessionKey string
	UnionID    string
}

// WechatClient exchanges miniprogram login codes for a stable openid and the
// session key bound to it.
type WechatClient struct {
	AppID      string
	Secret     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewWechatClient(appID, secret string) *WechatClient {
	return &WechatClient{
		AppID:      appID,
		Secret:     secret,
		BaseURL:    defaultWechatBaseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type code2SessionResponse struct {
	OpenID     string `json:"openid"`
	SessionKey string `json:"session_key"`
	UnionID    string `json:"unionid"`
	ErrCode    int    `json:"errcode"`
	ErrMsg     string `json:"errmsg"`
}

// Code2Session performs the jscode2session exchange. The call is a black box
// to the rest of the system: it returns a session or a typed WechatError and
// is never retried here.
func (c *WechatClient) Code2Session(ctx context.Context, code string) (*WechatSession, error) {
	query := url.Values{}
	query.Set("appid", c.AppID)
	query.Set("secret", c.Secret)
	query.Set("js_code", code)
	query.Set("grant_type", "authorization_code")

	endpoint := c.BaseURL + "/sns/jscode2session?" + query.Encode()
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	response, err := c.httpClient().Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	var result code2SessionResponse
	if err := json.NewDecoder(response.Body).Decode(&result); err != nil {
		return nil, err
	}
	if result.ErrCode != 0 {
		return nil, &WechatError{Code: result.ErrCode, Msg: result.ErrMsg}
	}

	return &WechatSession{
		OpenID:     result.OpenID,
		SessionKey: result.SessionKey,
		UnionID:    result.UnionID,
	}, nil
}

func (c *WechatClient) httpClient() *http.Client {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	return c.HTTPClient
}
