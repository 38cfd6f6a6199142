// Package tool wraps callables into uniformly invocable tools and keeps them
// in an ordered registry.
//
// Tools are built from typed functions, with the argument schema generated
// from struct tags:
//
//	type SearchArgs struct {
//	    Query string `json:"query" desc:"Search query" required:"true"`
//	}
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("search", "Search the web",
//	        func(ctx context.Context, args SearchArgs) (string, error) {
//	            return doSearch(args.Query), nil
//	        }),
//	)
//
// or from untyped map handlers with an explicit parameter list via [New].
//
// [Registry.Invoke] never fails: schema violations, handler errors and
// panics come back as observation text. [Registry.Resolve] recovers
// misspelled tool names by fuzzy matching against the registered names.
package tool
