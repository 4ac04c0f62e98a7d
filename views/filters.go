package views

import (
	"encoding/json"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
)

var (
	filtersOnce sync.Once
	ugcPolicy   *bluemonday.Policy
)

// registerFilters adds the hermes filters to pongo2's global filter registry.
//
//	{{ comment|sanitize }}  user supplied HTML, stripped down to safe markup
//	{{ creature|tojson }}   indented JSON, escaped like any other value
func registerFilters() {
	filtersOnce.Do(func() {
		ugcPolicy = bluemonday.UGCPolicy()
		if !pongo2.FilterExists("sanitize") {
			_ = pongo2.RegisterFilter("sanitize", filterSanitize)
		}
		if !pongo2.FilterExists("tojson") {
			_ = pongo2.RegisterFilter("tojson", filterToJSON)
		}
	})
}

func filterSanitize(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsSafeValue(ugcPolicy.Sanitize(in.String())), nil
}

func filterToJSON(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	data, err := json.MarshalIndent(in.Interface(), "", "  ")
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:tojson", OrigError: err}
	}
	return pongo2.AsValue(string(data)), nil
}
