// Package modeladapter defines the [Generator] interface used to obtain text
// from a generative-language model, and an embeddable [ModelAdapter] base
// struct with the HTTP, auth and usage-tracking plumbing shared by providers.
//
// Concrete providers live in separate packages under pkg/providers and embed
// ModelAdapter. Failures from the remote service are returned as-is, wrapped
// in [APIError] or [RateLimitError]; nothing here retries.
package modeladapter
