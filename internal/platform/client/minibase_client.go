package client

import (
	"fmt"
	"net/url"

	"MiniBase/internal/platform/api"

	"github.com/go-resty/resty/v2"
)

const (
	health_endpoint = "/health"
	tables_endpoint = "/tables"
)

// APIError is a non-2xx answer of the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("minibase: status %d: %s", e.StatusCode, e.Message)
}

type MiniBaseClient struct {
	client    *resty.Client
	serverUrl string
}

func NewMiniBaseClient(serverUrl string) *MiniBaseClient {
	return &MiniBaseClient{
		client:    resty.New(),
		serverUrl: serverUrl,
	}
}

func (c *MiniBaseClient) tableUri(table string, parts ...string) string {
	uri := c.serverUrl + tables_endpoint + "/" + url.PathEscape(table)
	for _, p := range parts {
		uri += "/" + p
	}
	return uri
}

func check(res *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !res.IsError() {
		return nil
	}
	apiErr := &APIError{StatusCode: res.StatusCode(), Message: res.Status()}
	if e, ok := res.Error().(*api.ErrorResponse); ok && e.Error != "" {
		apiErr.Message = e.Error
	}
	return apiErr
}

func (c *MiniBaseClient) Health() (*api.HealthResponse, error) {
	var resp api.HealthResponse
	res, err := c.client.R().SetResult(&resp).SetError(&api.ErrorResponse{}).Get(c.serverUrl + health_endpoint)
	if err := check(res, err); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *MiniBaseClient) ListTables() ([]string, error) {
	var resp api.TablesResponse
	res, err := c.client.R().SetResult(&resp).SetError(&api.ErrorResponse{}).Get(c.serverUrl + tables_endpoint)
	if err := check(res, err); err != nil {
		return nil, err
	}
	return resp.Tables, nil
}

func (c *MiniBaseClient) CreateTable(body api.CreateTableRequest) (*api.TableResponse, error) {
	var resp api.TableResponse
	res, err := c.client.R().SetResult(&resp).SetError(&api.ErrorResponse{}).SetBody(&body).Post(c.serverUrl + tables_endpoint)
	if err := check(res, err); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *MiniBaseClient) DropTable(table string) error {
	res, err := c.client.R().SetError(&api.ErrorResponse{}).Delete(c.tableUri(table))
	return check(res, err)
}

// DropAllTables deletes every table on the server and returns the dropped names.
func (c *MiniBaseClient) DropAllTables() ([]string, error) {
	var resp api.TablesResponse
	res, err := c.client.R().SetResult(&resp).SetError(&api.ErrorResponse{}).Delete(c.serverUrl + tables_endpoint)
	if err := check(res, err); err != nil {
		return nil, err
	}
	return resp.Tables, nil
}

func (c *MiniBaseClient) Fields(table string) (*api.TableResponse, error) {
	var resp api.TableResponse
	res, err := c.client.R().SetResult(&resp).SetError(&api.ErrorResponse{}).Get(c.tableUri(table, "fields"))
	if err := check(res, err); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *MiniBaseClient) Records(table string) (*api.RecordsResponse, error) {
	var resp api.RecordsResponse
	res, err := c.client.R().SetResult(&resp).SetError(&api.ErrorResponse{}).Get(c.tableUri(table, "records"))
	if err := check(res, err); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RecordsText fetches the rendered grid of a table.
func (c *MiniBaseClient) RecordsText(table string) (string, error) {
	res, err := c.client.R().SetQueryParam("format", "text").SetError(&api.ErrorResponse{}).Get(c.tableUri(table, "records"))
	if err := check(res, err); err != nil {
		return "", err
	}
	return res.String(), nil
}

func (c *MiniBaseClient) InsertRecord(table string, values ...string) (*api.InsertRecordResponse, error) {
	var resp api.InsertRecordResponse
	body := api.InsertRecordRequest{Values: values}
	res, err := c.client.R().SetResult(&resp).SetError(&api.ErrorResponse{}).SetBody(&body).Post(c.tableUri(table, "records"))
	if err := check(res, err); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *MiniBaseClient) UpdateRecords(table, field, oldValue, newValue string) (int, error) {
	var resp api.AffectedResponse
	body := api.UpdateRecordRequest{Field: field, Old: oldValue, New: newValue}
	res, err := c.client.R().SetResult(&resp).SetError(&api.ErrorResponse{}).SetBody(&body).Patch(c.tableUri(table, "records"))
	if err := check(res, err); err != nil {
		return 0, err
	}
	return resp.Affected, nil
}

func (c *MiniBaseClient) DeleteRecords(table, field, value string) (int, error) {
	var resp api.AffectedResponse
	res, err := c.client.R().
		SetResult(&resp).
		SetError(&api.ErrorResponse{}).
		SetQueryParams(map[string]string{"field": field, "value": value}).
		Delete(c.tableUri(table, "records"))
	if err := check(res, err); err != nil {
		return 0, err
	}
	return resp.Affected, nil
}

func (c *MiniBaseClient) transaction(table string, parts ...string) (*api.TransactionResponse, error) {
	var resp api.TransactionResponse
	res, err := c.client.R().SetResult(&resp).SetError(&api.ErrorResponse{}).Post(c.tableUri(table, parts...))
	if err := check(res, err); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *MiniBaseClient) Begin(table string) (*api.TransactionResponse, error) {
	return c.transaction(table, "transactions")
}

func (c *MiniBaseClient) Commit(table string) (*api.TransactionResponse, error) {
	return c.transaction(table, "transactions", "commit")
}

func (c *MiniBaseClient) Abort(table string) (*api.TransactionResponse, error) {
	return c.transaction(table, "transactions", "abort")
}

func (c *MiniBaseClient) CreateIndex(table, field string) (*api.IndexResponse, error) {
	var resp api.IndexResponse
	body := api.CreateIndexRequest{Field: field}
	res, err := c.client.R().SetResult(&resp).SetError(&api.ErrorResponse{}).SetBody(&body).Post(c.tableUri(table, "index"))
	if err := check(res, err); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *MiniBaseClient) Search(table, key string) (*api.SearchResponse, error) {
	var resp api.SearchResponse
	res, err := c.client.R().
		SetResult(&resp).
		SetError(&api.ErrorResponse{}).
		SetQueryParam("key", key).
		Get(c.tableUri(table, "index"))
	if err := check(res, err); err != nil {
		return nil, err
	}
	return &resp, nil
}
