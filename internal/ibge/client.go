// Package ibge é um cliente mínimo da API de localidades do IBGE
// (estados e municípios), usada nos selects dependentes UF -> cidade.
package ibge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"
)

var (
	ErrInvalidUF = errors.New("ibge: uf inválida")
	ErrUpstream  = errors.New("ibge: falha no serviço de localidades")
)

var ufPattern = regexp.MustCompile(`^[A-Za-z]{2}$`)

type State struct {
	ID   int    `json:"id"`
	UF   string `json:"uf"`
	Name string `json:"name"`
}

type City struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type stateResponse struct {
	ID    int    `json:"id"`
	Sigla string `json:"sigla"`
	Nome  string `json:"nome"`
}

type cityResponse struct {
	ID   int    `json:"id"`
	Nome string `json:"nome"`
}

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("ibge: empty base url")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// States devolve os estados ordenados pela sigla.
func (c *Client) States(ctx context.Context) ([]State, error) {
	var resp []stateResponse
	if err := c.getJSON(ctx, "/estados", &resp); err != nil {
		return nil, err
	}
	states := make([]State, 0, len(resp))
	for _, s := range resp {
		states = append(states, State{ID: s.ID, UF: s.Sigla, Name: s.Nome})
	}
	sort.Slice(states, func(i, j int) bool { return states[i].UF < states[j].UF })
	return states, nil
}

// Cities devolve os municípios de uf ordenados pelo nome.
func (c *Client) Cities(ctx context.Context, uf string) ([]City, error) {
	if !ufPattern.MatchString(uf) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUF, uf)
	}
	var resp []cityResponse
	path := "/estados/" + url.PathEscape(strings.ToUpper(uf)) + "/municipios"
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	cities := make([]City, 0, len(resp))
	for _, m := range resp {
		cities = append(cities, City{ID: m.ID, Name: m.Nome})
	}
	sort.Slice(cities, func(i, j int) bool { return cities[i].Name < cities[j].Name })
	return cities, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: http %d", ErrUpstream, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}
