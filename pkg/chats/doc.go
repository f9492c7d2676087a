// Package chats provides the provider-agnostic message payload sent to the model.
//
// It is organized into sub-packages:
//   - [github.com/germanamz/nmapsum/pkg/chats/role]: conversation roles (user, model)
//   - [github.com/germanamz/nmapsum/pkg/chats/content]: content parts (text)
//   - [github.com/germanamz/nmapsum/pkg/chats/message]: messages composed of a role and content parts
//
// No provider or API code is included. Providers translate messages into
// their own wire format.
package chats
