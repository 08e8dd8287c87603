// Package render turns the task list and a timestamp into user-facing
// payloads: a numbered text listing, a set of multi-select polls, or a
// template-expanded message for an empty list. All functions are pure.
package render

import (
	"fmt"
	"strings"
	"time"
)

// Telegram transport limits.
const (
	// MaxPollOptions is the most options a single poll may carry.
	MaxPollOptions = 10
	// MaxQuestionLen is the longest poll question the transport accepts.
	MaxQuestionLen = 300
	// MaxOptionLen is the longest poll option text the transport accepts.
	MaxOptionLen = 100
)

// DateLayout is the running date format used in questions and templates.
const DateLayout = "02.01.2006"

// DefaultTemplate is expanded when the task list is empty and the user has
// not set one.
const DefaultTemplate = "No tasks for {date} ({weekday}). Enjoy your day, {username}!"

// Poll is one rendered poll payload: at most MaxPollOptions options,
// multi-select, non-anonymous.
type Poll struct {
	Question string
	Options  []string
}

// Text renders the plain text payload: the template-expanded message when
// the task list is empty, otherwise a dated header over the numbered
// listing.
func Text(tasks []string, now time.Time, template, username string) string {
	if len(tasks) == 0 {
		return Expand(template, now, username)
	}
	return fmt.Sprintf("Tasks for %s:\n%s", now.Format(DateLayout), TaskList(tasks))
}

// TaskList renders the numbered text listing, one line per task.
func TaskList(tasks []string) string {
	var b strings.Builder
	for i, task := range tasks {
		fmt.Fprintf(&b, "%d. %s\n", i+1, task)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Polls partitions tasks into polls of at most MaxPollOptions options,
// preserving order across groups. Each question carries the running date
// and, when more than one group exists, an (i/N) suffix. Questions and
// options are truncated to the transport limits; truncation is silent.
// An empty task list yields no polls; callers degrade to a text payload.
func Polls(tasks []string, now time.Time) []Poll {
	if len(tasks) == 0 {
		return nil
	}

	groups := chunk(tasks, MaxPollOptions)
	date := now.Format(DateLayout)

	polls := make([]Poll, 0, len(groups))
	for i, group := range groups {
		question := "Daily tasks — " + date
		if len(groups) > 1 {
			question += fmt.Sprintf(" (%d/%d)", i+1, len(groups))
		}

		options := make([]string, len(group))
		for j, task := range group {
			options[j] = Truncate(task, MaxOptionLen)
		}

		polls = append(polls, Poll{
			Question: Truncate(question, MaxQuestionLen),
			Options:  options,
		})
	}

	return polls
}

// Expand substitutes the {date}, {weekday}, {time}, and {username}
// placeholders in template. An empty template falls back to
// DefaultTemplate.
func Expand(template string, now time.Time, username string) string {
	if template == "" {
		template = DefaultTemplate
	}
	r := strings.NewReplacer(
		"{date}", now.Format(DateLayout),
		"{weekday}", now.Weekday().String(),
		"{time}", now.Format("15:04"),
		"{username}", username,
	)
	return r.Replace(template)
}

// Truncate shortens s to at most n runes. Lossy and silent.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func chunk(items []string, size int) [][]string {
	var groups [][]string
	for size < len(items) {
		groups = append(groups, items[:size])
		items = items[size:]
	}
	return append(groups, items)
}
