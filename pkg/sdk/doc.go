// Package vendorscout embeds the vendor sourcing engine in a Go program without running
// the HTTP API. It talks to the same Redis vendor index the API server uses.
//
//	client, _ := vendorscout.New(ctx,
//	    vendorscout.WithRedis("localhost:6379", ""),
//	    vendorscout.WithOpenAI(vendorscout.OpenAIConfig{APIKey: key}),
//	    vendorscout.WithCategory("venue", 0.7, 0.3, "reception"),
//	    vendorscout.WithCategory("photographer", 0.4, 0.6, ""),
//	)
//	defer client.Close()
//
//	_, _ = client.Upsert(ctx, vendors)
//	res, _ := client.Source(ctx, brief, "venue", 5)
//
// Without a provider (neither WithOpenAI nor WithProvider) every shortlist is ranked on
// hard filters and price only, and Result.Degraded is set.
package vendorscout
