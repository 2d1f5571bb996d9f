package match

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"rally/api"
)

// pageSize is the page size used when walking the match listing.
const pageSize = 10

// ListAll retrieves every match visible to the bearer token, walking
// the paginated listing until the server-reported total is reached.
// The total travels in the "total" response header; a missing or
// unparsable header ends the walk after the current page.
func ListAll(ctx context.Context, fetch api.Fetcher, access string) ([]Match, error) {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+access)

	var all []Match
	for page := 0; ; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("size", strconv.Itoa(pageSize))

		res, err := fetch.Do(ctx, api.Request{
			Route:  api.RouteMatches,
			Query:  q,
			Header: h,
		})
		if err != nil {
			return nil, err
		}
		if !res.OK {
			return nil, &api.RemoteError{Route: api.RouteMatches, Status: res.Status, Message: res.Message}
		}

		var matches []Match
		if err := res.Decode(&matches); err != nil {
			return nil, err
		}
		all = append(all, matches...)

		// An empty page ends the walk even when the reported total was
		// never reached.
		if len(matches) == 0 {
			return all, nil
		}

		total, _ := strconv.Atoi(res.Header.Get("total"))
		if len(all) >= total {
			return all, nil
		}
	}
}
