package api

import (
	"context"
	"net/http"
	"strconv"
)

// PrintResult reports a fire-and-report print job: ok plus the number of
// printed lines when the spooler counts them.
type PrintResult struct {
	OK    bool `json:"ok"`
	Lines int  `json:"lines"`
}

type printRequest struct {
	Date   string `json:"date"`
	Status string `json:"status,omitempty"`
}

// No retries on any print call; failures surface verbatim and must never
// block the action that triggered them.

func (c *Client) PrintDaily(ctx context.Context, date, status string) (PrintResult, error) {
	var res PrintResult
	err := c.doJSON(ctx, http.MethodPost, "/api/print/daily", nil, printRequest{Date: date, Status: status}, &res)
	return res, err
}

func (c *Client) PrintPlacecard(ctx context.Context, id int64) (PrintResult, error) {
	var res PrintResult
	err := c.doJSON(ctx, http.MethodPost, "/api/print/placecards/"+strconv.FormatInt(id, 10), nil, nil, &res)
	return res, err
}

func (c *Client) PrintPlacecards(ctx context.Context, date, status string) (PrintResult, error) {
	var res PrintResult
	err := c.doJSON(ctx, http.MethodPost, "/api/print/placecards", nil, printRequest{Date: date, Status: status}, &res)
	return res, err
}
