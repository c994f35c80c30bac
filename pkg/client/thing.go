package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"bookable/pkg/model"
)

type ThingClient struct {
	httpClient *HttpClient
}

func NewThingClient(baseUrl string) *ThingClient {
	return &ThingClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *ThingClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/things", body)
}

func (c *ThingClient) GetByOwner(ownerID string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	q.Set("owner", ownerID)
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))

	path := "/api/v1/things?" + q.Encode()
	return c.httpClient.GET(path)
}

func (c *ThingClient) GetByID(id string) (*Response, error) {
	path := "/api/v1/things/" + url.PathEscape(id)
	return c.httpClient.GET(path)
}

func (c *ThingClient) Update(id string, body any) (*Response, error) {
	path := "/api/v1/things/" + url.PathEscape(id)
	return c.httpClient.PATCH(path, body)
}

func (c *ThingClient) Deactivate(id string) (*Response, error) {
	path := "/api/v1/things/" + url.PathEscape(id)
	return c.httpClient.DELETE(path)
}

func (c *ThingClient) CreateRaw(rawBody []byte) (*Response, error) {
	return c.httpClient.POSTRaw("/api/v1/things", rawBody)
}

func (c *ThingClient) DecodeThing(resp *Response) (*model.Thing, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode thing wrapper:\n%+v\n%s", resp.ToString(), err)
	}

	var thing model.Thing
	if err := json.Unmarshal(wrapper.Data, &thing); err != nil {
		return nil, fmt.Errorf("could not decode thing json:\n%+v\n%s", resp.ToString(), err)
	}

	return &thing, nil
}

func (c *ThingClient) DecodeThings(resp *Response) ([]*model.Thing, *Metadata, error) {
	var wrapper struct {
		Data       json.RawMessage `json:"data"`
		TotalCount int64           `json:"total_count"`
		Limit      int             `json:"limit"`
		Offset     int64           `json:"offset"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp:\n%+v\n%s", resp.ToString(), err)
	}

	var things []*model.Thing
	if err := json.Unmarshal(wrapper.Data, &things); err != nil {
		return nil, nil, fmt.Errorf("could not decode thing list:\n%+v\n%s", resp.ToString(), err)
	}

	metadata := &Metadata{
		TotalCount: wrapper.TotalCount,
		Limit:      wrapper.Limit,
		Offset:     wrapper.Offset,
	}

	return things, metadata, nil
}
