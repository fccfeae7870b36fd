package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	defaultFeishuBaseURL = "https://open.feishu.cn"

	// A token within this margin of expiry is treated as already expired.
	tokenRefreshMargin = 5 * time.Minute
)

// FeishuError is a provider-side failure of the token or record service.
type FeishuError struct {
	Code int
	Msg  string
}

func (e *FeishuError) Error() string {
	return fmt.Sprintf("feishu api error: %d - %s", e.Code, e.Msg)
}

// CheckinRecord is one check-in row destined for the bitable.
type CheckinRecord struct {
	Nickname string
	MealType string
	Price    float64
	Location string
	// DateMillis is epoch milliseconds; zero means now.
	DateMillis int64
}

// The bitable columns are named in Chinese; the labels below are its wire
// format, not presentation.
var mealTypeLabels = map[string]string{
	"breakfast": "早餐",
	"lunch":     "午餐",
	"dinner":    "晚餐",
}

// FeishuClient creates bitable records, authenticating with a process-wide
// cached tenant access token. The cache is refreshed lazily; concurrent misses
// collapse into a single outbound fetch.
type FeishuClient struct {
	AppID     string
	AppSecret string
	AppToken  string
	TableID   string

	BaseURL    string
	HTTPClient *http.Client

	clock Clock

	mu            sync.Mutex
	token         string
	tokenExpireAt time.Time
	flight        singleflight.Group
}

func NewFeishuClient(appID, appSecret, appToken, tableID string) *FeishuClient {
	return &FeishuClient{
		AppID:      appID,
		AppSecret:  appSecret,
		AppToken:   appToken,
		TableID:    tableID,
		BaseURL:    defaultFeishuBaseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		clock:      RealClock{},
	}
}

type tenantTokenResponse struct {
	Code              int    `json:"code"`
	Msg               string `json:"msg"`
	TenantAccessToken string `json:"tenant_access_token"`
	Expire            int64  `json:"expire"`
}

type createRecordResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Record struct {
			RecordID string `json:"record_id"`
		} `json:"record"`
	} `json:"data"`
}

// AccessToken returns the cached tenant access token, fetching a new one when
// the cache is empty or within the refresh margin of expiry.
func (c *FeishuClient) AccessToken(ctx context.Context) (string, error) {
	if token := c.cachedToken(); token != "" {
		return token, nil
	}

	value, err, _ := c.flight.Do("tenant_access_token", func() (any, error) {
		// A waiter may arrive just after the winner stored the token.
		if token := c.cachedToken(); token != "" {
			return token, nil
		}
		return c.fetchToken(ctx)
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

func (c *FeishuClient) cachedToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.clock.Now().Before(c.tokenExpireAt.Add(-tokenRefreshMargin)) {
		return c.token
	}
	return ""
}

func (c *FeishuClient) fetchToken(ctx context.Context) (string, error) {
	payload := map[string]string{
		"app_id":     c.AppID,
		"app_secret": c.AppSecret,
	}
	var result tenantTokenResponse
	if err := c.postJSON(ctx, "/open-apis/auth/v3/tenant_access_token/internal", "", payload, &result); err != nil {
		return "", err
	}
	if result.Code != 0 {
		return "", &FeishuError{Code: result.Code, Msg: result.Msg}
	}

	expire := result.Expire
	if expire == 0 {
		expire = 7200
	}

	c.mu.Lock()
	c.token = result.TenantAccessToken
	c.tokenExpireAt = c.clock.Now().Add(time.Duration(expire) * time.Second)
	c.mu.Unlock()

	return result.TenantAccessToken, nil
}

// CreateRecord writes one check-in record to the bitable and returns the
// record id.
func (c *FeishuClient) CreateRecord(ctx context.Context, record CheckinRecord) (string, error) {
	label, ok := mealTypeLabels[record.MealType]
	if !ok {
		return "", ErrInvalidInput
	}

	token, err := c.AccessToken(ctx)
	if err != nil {
		return "", err
	}

	date := record.DateMillis
	if date == 0 {
		date = c.clock.Now().UnixMilli()
	}

	payload := map[string]any{
		"fields": map[string]any{
			"微信昵称": record.Nickname,
			"时间段":  label,
			"价格":   record.Price,
			"地点":   record.Location,
			"日期":   date,
		},
	}

	path := fmt.Sprintf("/open-apis/bitable/v1/apps/%s/tables/%s/records", c.AppToken, c.TableID)
	var result createRecordResponse
	if err := c.postJSON(ctx, path, token, payload, &result); err != nil {
		return "", err
	}
	if result.Code != 0 {
		return "", &FeishuError{Code: result.Code, Msg: result.Msg}
	}
	return result.Data.Record.RecordID, nil
}

func (c *FeishuClient) postJSON(ctx context.Context, path, bearer string, payload any, target any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		request.Header.Set("Authorization", "Bearer "+bearer)
	}

	response, err := c.httpClient().Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	return json.NewDecoder(response.Body).Decode(target)
}

func (c *FeishuClient) httpClient() *http.Client {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	return c.HTTPClient
}
