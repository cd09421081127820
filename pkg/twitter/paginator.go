package twitter

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"net/url"

	"github.com/Kudusch/twitter-user-stats/pkg/errors"
	"github.com/Kudusch/twitter-user-stats/pkg/logger"
	"github.com/Kudusch/twitter-user-stats/pkg/metrics"
	"github.com/Kudusch/twitter-user-stats/pkg/retry"
)

// Cursor parameter names used by the paginated endpoints
const (
	CursorParamSearch      = "next_token"
	CursorParamRetweetedBy = "pagination_token"
)

// PageFunc consumes one page of tweet results. Returning an error stops
// pagination; the error is subject to the same partial-result rule as
// fetch failures.
type PageFunc func(page int, resp *TweetsResponse) error

// UserPageFunc consumes one page of user results
type UserPageFunc func(page int, resp *UsersResponse) error

// Paginate walks a cursored tweet endpoint page by page, invoking fn for
// each page. Pagination ends when the response carries no next token.
//
// Failures are tail-lenient: an error on the first page is returned,
// but an error after at least one delivered page is logged and the
// pages already consumed stand as a partial result. Context
// cancellation always propagates.
func (c *Client) Paginate(ctx context.Context, endpoint string, params url.Values, cursorParam string, fn PageFunc) error {
	return paginate(c, ctx, endpoint, params, cursorParam,
		func(resp *TweetsResponse) (string, int) {
			if resp.Meta == nil {
				return "", len(resp.Data)
			}
			return resp.Meta.NextToken, len(resp.Data)
		}, fn)
}

// PaginateUsers walks a cursored user endpoint with the same pacing and
// partial-result semantics as Paginate.
func (c *Client) PaginateUsers(ctx context.Context, endpoint string, params url.Values, cursorParam string, fn UserPageFunc) error {
	return paginate(c, ctx, endpoint, params, cursorParam,
		func(resp *UsersResponse) (string, int) {
			if resp.Meta == nil {
				return "", len(resp.Data)
			}
			return resp.Meta.NextToken, len(resp.Data)
		}, fn)
}

// paginate is the shared cursor loop. meta extracts the next token and
// the result count from a decoded page.
func paginate[R any](c *Client, ctx context.Context, endpoint string, params url.Values, cursorParam string, meta func(*R) (string, int), fn func(int, *R) error) error {
	page := 0

	for {
		body, err := c.GetJSON(ctx, endpoint, params)
		if err != nil {
			return c.partialOrFail(ctx, endpoint, page, err)
		}

		var resp R
		if err := json.Unmarshal(body, &resp); err != nil {
			parseErr := &errors.Error{Type: errors.ErrorTypeParsing, Message: err.Error()}
			return c.partialOrFail(ctx, endpoint, page, parseErr)
		}

		page++
		metrics.IncPage(endpoint)

		nextToken, count := meta(&resp)
		logger.LogPage(endpoint, page, count, nextToken)

		if err := fn(page, &resp); err != nil {
			return c.partialOrFail(ctx, endpoint, page-1, err)
		}

		if nextToken == "" {
			return nil
		}

		// Extra pause before consuming a cursor, on top of the pacer
		if err := retry.Wait(ctx, c.rateCfg.CursorPause); err != nil {
			return err
		}

		params.Set(cursorParam, nextToken)
	}
}

// partialOrFail applies the partial-result rule: with pages already
// delivered the error is demoted to a warning, otherwise it is returned.
func (c *Client) partialOrFail(ctx context.Context, endpoint string, pagesDelivered int, err error) error {
	if goerrors.Is(err, context.Canceled) || goerrors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return err
	}

	if pagesDelivered > 0 {
		c.logger.WithError(err).WithFields(map[string]interface{}{
			"endpoint": endpoint,
			"pages":    pagesDelivered,
		}).Warn("Pagination aborted, keeping partial results")
		return nil
	}

	return err
}
