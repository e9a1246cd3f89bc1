package stats

import (
	"fmt"
	"strconv"
)

// Kind tags a Result so callers can tell a ranked answer from the "no answer" cases
// without comparing message text.
type Kind int

const (
	// Found carries one or more values.
	Found Kind = iota
	// Empty means the user has no records in the collection.
	Empty
	// NoQualifying means records exist but none satisfy the statistic.
	NoQualifying
	// TooManyTies means more values tied than the statistic displays.
	TooManyTies
)

func (k Kind) String() string {
	switch k {
	case Found:
		return "found"
	case Empty:
		return "empty"
	case NoQualifying:
		return "no_qualifying"
	case TooManyTies:
		return "too_many_ties"
	default:
		return "unknown"
	}
}

// Result is the outcome of one statistic. Values is non-empty only for Found and keeps the
// order in which each value first appears in the user's records. Message holds the default
// wording for the other kinds.
type Result struct {
	Kind    Kind
	Values  []string
	Message string
}

func found(values []string) Result {
	return Result{Kind: Found, Values: values}
}

func empty(c Collection) Result {
	return Result{Kind: Empty, Message: fmt.Sprintf("No records in %s", c)}
}

func noQualifying(message string) Result {
	return Result{Kind: NoQualifying, Message: message}
}

func tooManyTies() Result {
	return Result{Kind: TooManyTies, Message: "Too many tie"}
}

// DaysResult is the outcome of DaysSinceLastWatch.
type DaysResult struct {
	Kind    Kind
	Days    int
	Message string
}

// String renders the day count, or the message when there is no count.
func (d DaysResult) String() string {
	if d.Kind != Found {
		return d.Message
	}
	return strconv.Itoa(d.Days)
}

// Result adapts the day count to the common Result shape used by statistics views.
func (d DaysResult) Result() Result {
	if d.Kind != Found {
		return Result{Kind: d.Kind, Message: d.Message}
	}
	return found([]string{d.String()})
}
