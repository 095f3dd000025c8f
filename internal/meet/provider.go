package meet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Provider is the external video-conferencing service the bridge proxies
// room management to.
type Provider interface {
	CreateRoom(name string) (string, error)
	CreateRoomCode(roomId string) (string, error)
	RoomExists(roomId string) (bool, error)
}

// HTTPProvider talks to a 100ms-style management API.
type HTTPProvider struct {
	BaseURL    string
	Token      string
	TemplateId string
	Client     *http.Client
}

func NewHTTPProvider(baseURL, token, templateId string) *HTTPProvider {
	return &HTTPProvider{
		BaseURL:    baseURL,
		Token:      token,
		TemplateId: templateId,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *HTTPProvider) do(method, url string, body any, out any) error {
	var reqBody bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&reqBody).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequest(method, url, &reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: unexpected status %d", method, url, resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (p *HTTPProvider) CreateRoom(name string) (string, error) {
	var res struct {
		Id string `json:"id"`
	}

	err := p.do(http.MethodPost, p.BaseURL+"/rooms", map[string]string{
		"name":        name,
		"description": "Dynamic room for Xynexa",
		"template_id": p.TemplateId,
	}, &res)
	if err != nil {
		return "", fmt.Errorf("create room: %w", err)
	}
	if res.Id == "" {
		return "", fmt.Errorf("create room: empty room id in response")
	}

	return res.Id, nil
}

func (p *HTTPProvider) CreateRoomCode(roomId string) (string, error) {
	var res struct {
		Data []struct {
			Code    string `json:"code"`
			Enabled bool   `json:"enabled"`
		} `json:"data"`
	}

	err := p.do(http.MethodPost, p.BaseURL+"/room-codes/room/"+roomId, struct{}{}, &res)
	if err != nil {
		return "", fmt.Errorf("create room code: %w", err)
	}

	for _, code := range res.Data {
		if code.Enabled {
			return code.Code, nil
		}
	}

	return "", fmt.Errorf("create room code: no enabled code in response")
}

func (p *HTTPProvider) RoomExists(roomId string) (bool, error) {
	var res struct {
		Id string `json:"id"`
	}

	err := p.do(http.MethodGet, p.BaseURL+"/rooms/"+roomId, nil, &res)
	if err != nil {
		return false, err
	}

	return res.Id != "", nil
}
