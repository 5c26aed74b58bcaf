package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/weeklydigest/pkg/domain/types"
)

// Project is one tracked initiative
type Project struct {
	Key   types.ProjectKey `yaml:"key" json:"key"`
	Label string           `yaml:"label" json:"label"` // Human readable name (optional)
}

// ProjectPair merges two regional halves of one logical project into a single
// section of the combined update. Pairing is configuration, never inferred.
type ProjectPair struct {
	Label   string             `yaml:"label" json:"label"`
	Members []types.ProjectKey `yaml:"members" json:"members"` // Exactly two keys
}

// ProjectsConfig is the explicit configuration passed into aggregation
type ProjectsConfig struct {
	// Projects is the ordered required set. Order drives completeness and render order.
	Projects []Project     `yaml:"projects"`
	Pairs    []ProjectPair `yaml:"pairs,omitempty"`
}

// DefaultProjects returns the reference deployment's required set
func DefaultProjects() *ProjectsConfig {
	return &ProjectsConfig{
		Projects: []Project{
			{Key: "catalogue", Label: "Catalogue"},
			{Key: "fulfilment", Label: "Fulfilment"},
			{Key: "shopify_eu", Label: "Shopify EU"},
			{Key: "shopify_us", Label: "Shopify US"},
			{Key: "d365", Label: "Dynamics 365"},
			{Key: "zendesk", Label: "Zendesk"},
		},
	}
}

// Validate validates the projects configuration
func (c *ProjectsConfig) Validate() error {
	if len(c.Projects) == 0 {
		return goerr.New("at least one project is required")
	}

	known := make(map[types.ProjectKey]bool)
	for i, p := range c.Projects {
		if err := p.Key.Validate(); err != nil {
			return goerr.Wrap(err, "invalid project at index",
				goerr.V("index", i))
		}
		if known[p.Key] {
			return goerr.New("duplicate project key",
				goerr.V("key", p.Key))
		}
		known[p.Key] = true
	}

	paired := make(map[types.ProjectKey]bool)
	for i, pair := range c.Pairs {
		if len(pair.Members) != 2 {
			return goerr.New("pair must have exactly two members",
				goerr.V("index", i), goerr.V("members", pair.Members))
		}
		a, b := pair.Members[0], pair.Members[1]
		if a == b {
			return goerr.New("pair members must differ",
				goerr.V("index", i), goerr.V("key", a))
		}
		for _, m := range pair.Members {
			if !known[m] {
				return goerr.New("pair member is not a required project",
					goerr.V("index", i), goerr.V("key", m))
			}
			if paired[m] {
				return goerr.New("project is paired more than once",
					goerr.V("key", m))
			}
			paired[m] = true
		}
	}

	return nil
}

// Required returns the ordered required project keys
func (c *ProjectsConfig) Required() []types.ProjectKey {
	keys := make([]types.ProjectKey, 0, len(c.Projects))
	for _, p := range c.Projects {
		keys = append(keys, p.Key)
	}
	return keys
}

// Labels returns the key to label table. Projects without a label are omitted.
func (c *ProjectsConfig) Labels() map[types.ProjectKey]string {
	labels := make(map[types.ProjectKey]string, len(c.Projects))
	for _, p := range c.Projects {
		if p.Label != "" {
			labels[p.Key] = p.Label
		}
	}
	return labels
}

// IsRequired checks if the key is part of the required set
func (c *ProjectsConfig) IsRequired(key types.ProjectKey) bool {
	for _, p := range c.Projects {
		if p.Key == key {
			return true
		}
	}
	return false
}

// PairOf returns the pair containing key, or nil
func (c *ProjectsConfig) PairOf(key types.ProjectKey) *ProjectPair {
	for _, pair := range c.Pairs {
		if len(pair.Members) == 2 && (pair.Members[0] == key || pair.Members[1] == key) {
			result := pair
			return &result
		}
	}
	return nil
}

// LabelOf resolves a human readable label. Unknown keys render as the raw key.
func LabelOf(labels map[types.ProjectKey]string, key types.ProjectKey) string {
	if label, ok := labels[key]; ok && label != "" {
		return label
	}
	return key.String()
}
