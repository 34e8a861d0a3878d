package pagination

import "github.com/JaimeStill/aligner/pkg/openapi"

// Schema describes a PageResult whose data items reference the named component.
func Schema(item string) *openapi.Schema {
	return &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"data":         {Type: "array", Items: openapi.SchemaRef(item)},
			"total":        {Type: "integer"},
			"page":         {Type: "integer"},
			"page_size":    {Type: "integer"},
			"total_pages":  {Type: "integer"},
			"has_next":     {Type: "boolean"},
			"has_previous": {Type: "boolean"},
		},
	}
}
