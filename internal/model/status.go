package model

import (
	"encoding/json"
	"fmt"
)

// PageStatus describes how a page index maps onto the two compared documents.
// It is resolved from the page counts before any rendering is attempted.
type PageStatus int

const (
	// StatusPresentInBoth means the page index exists in both documents.
	StatusPresentInBoth PageStatus = iota

	// StatusAddedInSecond means the page only exists in the compared document.
	StatusAddedInSecond

	// StatusMissingInSecond means the page only exists in the base document.
	StatusMissingInSecond
)

// String returns the wire name of the status as it appears in report.json.
func (s PageStatus) String() string {
	switch s {
	case StatusPresentInBoth:
		return "present_in_both"
	case StatusAddedInSecond:
		return "added_in_second_pdf"
	case StatusMissingInSecond:
		return "missing_in_second_pdf"
	default:
		return "unknown"
	}
}

// ResolveStatus returns the status of page index i (0-based) given the page
// counts of the base and compared documents. The second return value is false
// when i is outside both documents.
func ResolveStatus(i, baseCount, compareCount int) (PageStatus, bool) {
	inBase := i >= 0 && i < baseCount
	inCompare := i >= 0 && i < compareCount

	switch {
	case inBase && inCompare:
		return StatusPresentInBoth, true
	case inCompare:
		return StatusAddedInSecond, true
	case inBase:
		return StatusMissingInSecond, true
	default:
		return StatusPresentInBoth, false
	}
}

// HasBase reports whether the base document provides this page.
func (s PageStatus) HasBase() bool {
	return s != StatusAddedInSecond
}

// HasCompare reports whether the compared document provides this page.
func (s PageStatus) HasCompare() bool {
	return s != StatusMissingInSecond
}

// MarshalJSON encodes the status as its wire name.
func (s PageStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status from its wire name.
func (s *PageStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParsePageStatus(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParsePageStatus converts a wire name back to a PageStatus.
func ParsePageStatus(name string) (PageStatus, error) {
	switch name {
	case "present_in_both":
		return StatusPresentInBoth, nil
	case "added_in_second_pdf":
		return StatusAddedInSecond, nil
	case "missing_in_second_pdf":
		return StatusMissingInSecond, nil
	default:
		return 0, fmt.Errorf("unknown page status %q", name)
	}
}
