// Package booruq evaluates booru-style search queries against image records
// and applies content filters that hide or spoiler images.
//
// # One-off queries
//
//	q, err := booruq.Compile("safe, (pinkie pie || rarity), score.gte:100")
//	if err != nil {
//	    var pe *booruq.ParseError
//	    errors.As(err, &pe) // pe.Kind, pe.Pos
//	}
//	ok := q.Match(&img, booruq.NoInteractions())
//
// # Client with cache and filters
//
//	client, _ := booruq.New(
//	    booruq.WithCacheSize(4096),
//	    booruq.WithFilters(booruq.FilterSpec{Name: "default", HiddenComplex: "grimdark"}),
//	)
//	results, _ := client.Match(ctx, "my:faves, -suggestive", images, booruq.Interactions(faves))
//	verdicts, _ := client.Classify(ctx, "default", images, booruq.NoInteractions())
//
// Filters added at runtime can be persisted with WithRedis or WithValkey.
package booruq
