// Package providers groups the concrete model backends.
//
// It is organized into sub-packages:
//   - [github.com/germanamz/nmapsum/pkg/providers/gemini]: Google Gemini generateContent adapter and per-call-key Client
//
// Shared HTTP plumbing (auth header, JSON POST, typed errors, usage tracking)
// lives in [github.com/germanamz/nmapsum/pkg/modeladapter]; providers embed
// it rather than reimplementing transport.
package providers
