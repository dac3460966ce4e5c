package testutil

// LoadFixtures registers a small, self-consistent slice of the catalog.
// Every reference URL points back at the mock server.
//
//	films/1      A New Hope      characters: people/1, people/2, people/3
//	people/1     Luke Skywalker  height 172, homeworld planets/1
//	people/2     C-3PO           height 167, homeworld planets/1, species/2
//	people/3     R2-D2           height 96,  homeworld planets/8, species/2
//	planets/1    Tatooine        residents: people/1, people/2
//	planets/8    Naboo           residents: people/3
//	species/2    Droid
//	starships/12 X-wing          pilots: people/1
//	people/      collection page of people/1..3 (count 82, next page 2)
func (m *MockSWAPI) LoadFixtures() {
	for path, body := range m.Fixtures() {
		m.SetJSON(path, body)
	}
}

// Fixtures returns the fixture catalog keyed by request path.
func (m *MockSWAPI) Fixtures() map[string]map[string]any {
	luke := map[string]any{
		"name":      "Luke Skywalker",
		"height":    "172",
		"mass":      "77",
		"homeworld": m.Ref("planets", 1),
		"films":     []any{m.Ref("films", 1)},
		"species":   []any{},
		"starships": []any{m.Ref("starships", 12)},
		"vehicles":  []any{},
		"url":       m.Ref("people", 1),
	}
	threepio := map[string]any{
		"name":      "C-3PO",
		"height":    "167",
		"mass":      "75",
		"homeworld": m.Ref("planets", 1),
		"films":     []any{m.Ref("films", 1)},
		"species":   []any{m.Ref("species", 2)},
		"starships": []any{},
		"vehicles":  []any{},
		"url":       m.Ref("people", 2),
	}
	artoo := map[string]any{
		"name":      "R2-D2",
		"height":    "96",
		"mass":      "32",
		"homeworld": m.Ref("planets", 8),
		"films":     []any{m.Ref("films", 1)},
		"species":   []any{m.Ref("species", 2)},
		"starships": []any{},
		"vehicles":  []any{},
		"url":       m.Ref("people", 3),
	}

	return map[string]map[string]any{
		"/api/people/1/": luke,
		"/api/people/2/": threepio,
		"/api/people/3/": artoo,
		"/api/people/": {
			"count":    82,
			"next":     m.BaseURL() + "/people/?page=2",
			"previous": nil,
			"results":  []any{luke, threepio, artoo},
		},
		"/api/films/1/": {
			"title":      "A New Hope",
			"episode_id": 4,
			"director":   "George Lucas",
			"characters": []any{m.Ref("people", 1), m.Ref("people", 2), m.Ref("people", 3)},
			"planets":    []any{m.Ref("planets", 1), m.Ref("planets", 8)},
			"starships":  []any{m.Ref("starships", 12)},
			"vehicles":   []any{},
			"species":    []any{m.Ref("species", 2)},
			"url":        m.Ref("films", 1),
		},
		"/api/planets/1/": {
			"name":      "Tatooine",
			"diameter":  "10465",
			"residents": []any{m.Ref("people", 1), m.Ref("people", 2)},
			"films":     []any{m.Ref("films", 1)},
			"url":       m.Ref("planets", 1),
		},
		"/api/planets/8/": {
			"name":      "Naboo",
			"diameter":  "12120",
			"residents": []any{m.Ref("people", 3)},
			"films":     []any{},
			"url":       m.Ref("planets", 8),
		},
		"/api/species/2/": {
			"name":   "Droid",
			"people": []any{m.Ref("people", 2), m.Ref("people", 3)},
			"films":  []any{m.Ref("films", 1)},
			"url":    m.Ref("species", 2),
		},
		"/api/starships/12/": {
			"name":   "X-wing",
			"model":  "T-65 X-wing",
			"pilots": []any{m.Ref("people", 1)},
			"films":  []any{m.Ref("films", 1)},
			"url":    m.Ref("starships", 12),
		},
	}
}
