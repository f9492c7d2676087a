// Package prompt builds the two fixed instruction payloads sent to the model
// for a single Nmap scan and cleans up the graph reply.
//
// The scan text is embedded verbatim: it is not escaped, sanitized or
// truncated.
package prompt

import (
	"fmt"
	"regexp"

	"github.com/germanamz/nmapsum/pkg/chats/message"
	"github.com/germanamz/nmapsum/pkg/chats/role"
)

const summaryTemplate = `Given the NMAP OUTPUT below, summarize it in the following format.
The output must be valid markdown:

  summary: a non-technical summary in a couple of sentences
  details: step-by-step comprehensive explanation that an expert can quickly scan and understand
  tools: suggestions of tools and commands to further investigate each open port

NMAP OUTPUT:
%s
RESPONSE:`

const graphTemplate = `Given the NMAP OUTPUT below, write graphviz (DOT language) code that
represents the scanned hosts, their open ports with a label for each port (port number,
protocol and service) and how they relate to each other.
Respond with the graphviz code only.

NMAP OUTPUT:
%s
RESPONSE:`

// fenceRe matches the first fenced code block. The optional info string
// (e.g. "graphviz", "dot") is only consumed when it is followed by a newline,
// so a one-line block like "```digraph{A}```" keeps its content intact.
var fenceRe = regexp.MustCompile("(?s)```(?:[\\w+#.-]*[ \\t]*\\r?\\n)?(.*?)\\r?\\n?```")

// BuildSummary returns the user message asking for a markdown summary of scan.
func BuildSummary(scan string) message.Message {
	return message.NewText(role.User, fmt.Sprintf(summaryTemplate, scan))
}

// BuildGraph returns the user message asking for a graphviz description of scan.
func BuildGraph(scan string) message.Message {
	return message.NewText(role.User, fmt.Sprintf(graphTemplate, scan))
}

// StripCodeFence returns the content of the first fenced code block in text,
// or text unchanged when it holds no complete fence.
func StripCodeFence(text string) string {
	m := fenceRe.FindStringSubmatch(text)
	if m == nil {
		return text
	}
	return m[1]
}
