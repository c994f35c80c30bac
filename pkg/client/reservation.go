package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"bookable/pkg/model"
)

type ReservationClient struct {
	httpClient *HttpClient
}

func NewReservationClient(baseUrl string) *ReservationClient {
	return &ReservationClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

// CreatedReservation is the confirmation payload. The cancel token appears
// only in this response and is never readable again.
type CreatedReservation struct {
	ID          string `json:"id"`
	CancelToken string `json:"cancel_token"`
}

// DayRun mirrors one display run of a day timeline response.
type DayRun struct {
	StartIndex    int    `json:"start_index"`
	Length        int    `json:"length"`
	ReservationID string `json:"reservation_id,omitempty"`
}

type DayTimeline struct {
	ThingID  string   `json:"thing_id"`
	Date     string   `json:"date"`
	TimeZone string   `json:"time_zone"`
	Runs     []DayRun `json:"runs"`
}

func (c *ReservationClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/reservations", body)
}

func (c *ReservationClient) CreateRaw(rawBody []byte) (*Response, error) {
	return c.httpClient.POSTRaw("/api/v1/reservations", rawBody)
}

func (c *ReservationClient) GetByID(id string) (*Response, error) {
	path := "/api/v1/reservations/" + url.PathEscape(id)
	return c.httpClient.GET(path)
}

func (c *ReservationClient) Cancel(id string) (*Response, error) {
	path := "/api/v1/reservations/" + url.PathEscape(id)
	return c.httpClient.DELETE(path)
}

func (c *ReservationClient) CancelByToken(token string) (*Response, error) {
	body := map[string]string{"cancel_token": token}
	return c.httpClient.POST("/api/v1/reservations/cancel", body)
}

func (c *ReservationClient) UpdateReminder(id string, body any) (*Response, error) {
	path := "/api/v1/reservations/" + url.PathEscape(id) + "/reminder"
	return c.httpClient.PATCH(path, body)
}

func (c *ReservationClient) GetDay(thingID string, date string) (*Response, error) {
	path := "/api/v1/things/" + url.PathEscape(thingID) + "/days/" + url.PathEscape(date)
	return c.httpClient.GET(path)
}

func (c *ReservationClient) DecodeCreated(resp *Response) (*CreatedReservation, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode created wrapper:\n%+v\n%s", resp.ToString(), err)
	}

	var created CreatedReservation
	if err := json.Unmarshal(wrapper.Data, &created); err != nil {
		return nil, fmt.Errorf("could not decode created json:\n%+v\n%s", resp.ToString(), err)
	}

	return &created, nil
}

func (c *ReservationClient) DecodeReservation(resp *Response) (*model.Reservation, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode reservation wrapper:\n%+v\n%s", resp.ToString(), err)
	}

	var reservation model.Reservation
	if err := json.Unmarshal(wrapper.Data, &reservation); err != nil {
		return nil, fmt.Errorf("could not decode reservation json:\n%+v\n%s", resp.ToString(), err)
	}

	return &reservation, nil
}

func (c *ReservationClient) DecodeDay(resp *Response) (*DayTimeline, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode day wrapper:\n%+v\n%s", resp.ToString(), err)
	}

	var day DayTimeline
	if err := json.Unmarshal(wrapper.Data, &day); err != nil {
		return nil, fmt.Errorf("could not decode day json:\n%+v\n%s", resp.ToString(), err)
	}

	return &day, nil
}
