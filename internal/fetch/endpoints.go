package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	json "github.com/goccy/go-json"
)

// ValueRange is one range of a values:batchGet response.
type ValueRange struct {
	Range          string  `json:"range"`
	MajorDimension string  `json:"majorDimension"`
	Values         [][]any `json:"values"`
}

// BatchGetResponse is the values:batchGet payload.
type BatchGetResponse struct {
	SpreadsheetID string       `json:"spreadsheetId"`
	ValueRanges   []ValueRange `json:"valueRanges"`
}

// /spreadsheets/{id}/values:batchGet
func (c *Client) BatchGet(ctx context.Context, sheetID string, ranges []string) (*BatchGetResponse, error) {
	q := url.Values{}
	for _, r := range ranges {
		q.Add("ranges", r)
	}
	q.Set("majorDimension", "ROWS")
	body, err := c.FetchRaw(ctx,
		fmt.Sprintf("/spreadsheets/%s/values:batchGet", url.PathEscape(sheetID)),
		q,
		fmt.Sprintf("sheets/%s/batchGet.json", sheetID),
	)
	if err != nil {
		return nil, err
	}
	var resp BatchGetResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode batchGet: %w", err)
	}
	return &resp, nil
}

// Strings renders every cell as text. The API returns formatted strings by
// default, but numbers and booleans appear when a render option says so.
func (v ValueRange) Strings() [][]string {
	out := make([][]string, len(v.Values))
	for i, row := range v.Values {
		out[i] = make([]string, len(row))
		for j, cell := range row {
			switch x := cell.(type) {
			case nil:
			case string:
				out[i][j] = x
			case float64:
				out[i][j] = strconv.FormatFloat(x, 'f', -1, 64)
			case bool:
				if x {
					out[i][j] = "TRUE"
				} else {
					out[i][j] = "FALSE"
				}
			default:
				out[i][j] = fmt.Sprint(x)
			}
		}
	}
	return out
}
