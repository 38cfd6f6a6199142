// Package client builds a model-calling collaborator from an explicit
// config.Config.
//
// The returned provider is wrapped with Retrying, which retries transient
// transport failures (rate limits, 5xx, connection resets) with exponential
// backoff. Context-window errors are returned immediately so the caller can
// shrink the prompt.
//
// # Basic Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	provider, err := client.New(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	resp, err := provider.Chat(ctx, []ai.Message{ai.UserMessage("Hello!")})
//
// # Events
//
// Pass WithEvents to observe requests and retries. Sends never block;
// events are dropped when the channel is full.
//
//	events := make(chan client.Event, 100)
//	provider, _ := client.New(ctx, cfg, client.WithEvents(events))
package client
