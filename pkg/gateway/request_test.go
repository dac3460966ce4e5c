package gateway

import (
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"

	"github.com/Sternrassler/swapi-gateway/pkg/sorter"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   Request
	}{
		{
			name:   "collection",
			target: "/people/",
			want:   Request{Resource: "people", Order: sorter.Asc},
		},
		{
			name:   "collection without trailing slash",
			target: "/people",
			want:   Request{Resource: "people", Order: sorter.Asc},
		},
		{
			name:   "single entity",
			target: "/people/1/",
			want:   Request{Resource: "people", ID: "1", Order: sorter.Asc},
		},
		{
			name:   "non-numeric trailing segment",
			target: "/people/luke",
			want:   Request{Resource: "people", Order: sorter.Asc},
		},
		{
			name:   "reserved keys are not forwarded",
			target: "/people/?sort_by=height&order=DESC&related_to=films/1&search=sky&page=2",
			want: Request{
				Resource:  "people",
				SortBy:    "height",
				Order:     sorter.Desc,
				RelatedTo: "films/1",
				Params:    url.Values{"search": {"sky"}, "page": {"2"}},
			},
		},
		{
			name:   "unknown order is ascending",
			target: "/films/?sort_by=episode_id&order=sideways",
			want:   Request{Resource: "films", SortBy: "episode_id", Order: sorter.Asc},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.target, nil)
			got := ParseRequest(tt.want.Resource, r)

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseRequest() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
