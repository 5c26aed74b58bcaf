package model

import (
	"fmt"
	"strings"

	"github.com/secmon-lab/weeklydigest/pkg/domain/types"
)

// SubmissionIndex maps project keys to their effective submission for one week
type SubmissionIndex map[types.ProjectKey]*Submission

// IndexSubmissions builds the index. When a key occurs more than once the later
// submission in input order wins; duplicates are not an error.
func IndexSubmissions(subs []*Submission) SubmissionIndex {
	idx := make(SubmissionIndex, len(subs))
	for _, s := range subs {
		if s == nil || s.ProjectKey == "" {
			continue
		}
		idx[s.ProjectKey] = s
	}
	return idx
}

// Completeness is the present/missing split of a required set.
// Both lists follow required-set order.
type Completeness struct {
	Present []types.ProjectKey `json:"present"`
	Missing []types.ProjectKey `json:"missing"`
}

// CheckCompleteness splits required into present and missing keys
func CheckCompleteness(required []types.ProjectKey, subs []*Submission) *Completeness {
	return IndexSubmissions(subs).Completeness(required)
}

// Completeness splits required against the index
func (idx SubmissionIndex) Completeness(required []types.ProjectKey) *Completeness {
	c := &Completeness{
		Present: []types.ProjectKey{},
		Missing: []types.ProjectKey{},
	}
	for _, key := range required {
		if _, ok := idx[key]; ok {
			c.Present = append(c.Present, key)
		} else {
			c.Missing = append(c.Missing, key)
		}
	}
	return c
}

// Ordered returns the effective submissions of keys in the given order, skipping absent ones
func (idx SubmissionIndex) Ordered(keys []types.ProjectKey) []*Submission {
	result := make([]*Submission, 0, len(keys))
	for _, key := range keys {
		if s, ok := idx[key]; ok {
			result = append(result, s)
		}
	}
	return result
}

// IsComplete reports whether every required key is present
func (c *Completeness) IsComplete() bool {
	return len(c.Missing) == 0
}

// Total returns the size of the required set
func (c *Completeness) Total() int {
	return len(c.Present) + len(c.Missing)
}

// Flag returns the incomplete-week flag line, or "" when complete
func (c *Completeness) Flag() string {
	if c.IsComplete() {
		return ""
	}
	keys := make([]string, len(c.Missing))
	for i, k := range c.Missing {
		keys[i] = k.String()
	}
	return fmt.Sprintf("[Flag: missing %d/%d: %s]", len(c.Missing), c.Total(), strings.Join(keys, ", "))
}
