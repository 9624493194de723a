package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"catering/internal/models"
	"catering/internal/reporting"
)

// ApiClient handles requests to the catering admin API
type ApiClient struct {
	httpClient *http.Client
	BaseURL    string
	token      string
}

// NewApiClient creates a client for CATERING_API_URL, defaulting to the
// local server.
func NewApiClient() *ApiClient {
	baseURL := os.Getenv("CATERING_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &ApiClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    baseURL,
	}
}

// CheckHealth checks if the API is up and running
func (c *ApiClient) CheckHealth() error {
	resp, err := c.httpClient.Get(c.BaseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API health check failed with status code: %d", resp.StatusCode)
	}
	return nil
}

// Login exchanges admin credentials for a token used on later requests
func (c *ApiClient) Login(username, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.do(http.MethodPost, "/api/v1/auth/login", body, &resp); err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

// Dashboard fetches the report summary for a period
func (c *ApiClient) Dashboard(period reporting.Period) (*reporting.Summary, error) {
	var summary reporting.Summary
	path := "/api/v1/admin/reports/dashboard?period=" + url.QueryEscape(string(period))
	if err := c.do(http.MethodGet, path, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// GetOrders lists orders, optionally only those with status
func (c *ApiClient) GetOrders(status models.OrderStatus) ([]models.Order, error) {
	path := "/api/v1/admin/orders"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	var orders []models.Order
	if err := c.do(http.MethodGet, path, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder retrieves a specific order by ID
func (c *ApiClient) GetOrder(id uint) (*models.Order, error) {
	var order models.Order
	if err := c.do(http.MethodGet, fmt.Sprintf("/api/v1/admin/orders/%d", id), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// SetOrderStatus moves an order to status
func (c *ApiClient) SetOrderStatus(id uint, status models.OrderStatus) (*models.Order, error) {
	var order models.Order
	body := map[string]models.OrderStatus{"status": status}
	if err := c.do(http.MethodPatch, fmt.Sprintf("/api/v1/admin/orders/%d/status", id), body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// TodaysMenu lists every entry on date, including ones switched off
func (c *ApiClient) TodaysMenu(date string) ([]models.TodaysMenu, error) {
	path := "/api/v1/admin/todays-menu"
	if date != "" {
		path += "?date=" + url.QueryEscape(date)
	}
	var resp struct {
		Items []models.TodaysMenu `json:"items"`
	}
	if err := c.do(http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// do sends a JSON request and decodes the JSON response into out. Non-2xx
// responses are returned as errors carrying the API's error message.
func (c *ApiClient) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
