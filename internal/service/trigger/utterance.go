package trigger

import (
	"strings"

	"github.com/covertcloak/scripture-alarm/internal/content"
)

// DefaultGreeting opens every utterance unless configured otherwise.
const DefaultGreeting = "Good morning. Here is your scripture for today"

// Greeting returns the configured greeting, or the default one addressed to
// userName when no greeting is configured.
func Greeting(configured, userName string) string {
	if greeting := strings.TrimSpace(configured); greeting != "" {
		return greeting
	}

	if name := strings.TrimSpace(userName); name != "" {
		return "Good morning, " + name + ". Here is your scripture for today"
	}

	return DefaultGreeting
}

// Utterance renders "<greeting>. <reference>. <body>." The body keeps its
// own closing punctuation when it has one.
func Utterance(greeting string, v content.Verse) string {
	greeting = strings.TrimRight(strings.TrimSpace(greeting), ".")

	body := strings.TrimSpace(v.Text)
	if !strings.ContainsAny(lastSignificant(body), ".?!") {
		body += "."
	}

	return greeting + ". " + v.Reference() + ". " + body
}

// lastSignificant returns the last character of s ignoring closing quotes.
func lastSignificant(s string) string {
	s = strings.TrimRight(s, "'\"’”")
	if s == "" {
		return ""
	}

	return s[len(s)-1:]
}
