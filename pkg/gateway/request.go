package gateway

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/Sternrassler/swapi-gateway/pkg/catalog"
	"github.com/Sternrassler/swapi-gateway/pkg/sorter"
)

// Reserved query parameters. Everything else is forwarded upstream.
const (
	ParamSortBy    = "sort_by"
	ParamOrder     = "order"
	ParamRelatedTo = "related_to"
)

// Request is a normalized inbound request.
type Request struct {
	Resource  string
	ID        string
	SortBy    string
	Order     sorter.Direction
	RelatedTo string
	Params    url.Values
}

// ParseRequest builds a Request for resource from r. The id is the last
// path segment when it is all digits; any other path is a collection.
func ParseRequest(resource string, r *http.Request) Request {
	query := r.URL.Query()

	req := Request{
		Resource:  resource,
		SortBy:    strings.TrimSpace(query.Get(ParamSortBy)),
		Order:     sorter.ParseDirection(query.Get(ParamOrder)),
		RelatedTo: strings.TrimSpace(query.Get(ParamRelatedTo)),
	}

	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if last := segments[len(segments)-1]; catalog.IsNumericID(last) {
		req.ID = last
	}

	for key, values := range query {
		switch key {
		case ParamSortBy, ParamOrder, ParamRelatedTo:
			continue
		}
		if req.Params == nil {
			req.Params = url.Values{}
		}
		req.Params[key] = append([]string(nil), values...)
	}

	return req
}
