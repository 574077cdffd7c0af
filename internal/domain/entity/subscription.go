package entity

import "net/url"

// Subscription is a standing (SearchParams, notification target) registration
// for continuous matching. Identity is structural: two subscriptions are the
// same if every SearchParams field and the target match exactly.
type Subscription struct {
	Params SearchParams `json:"search_params"`
	Target string       `json:"target"`
}

// Validate checks the subscription for client-input errors.
func (s *Subscription) Validate() error {
	if s.Target == "" {
		return &ValidationError{Field: "target", Message: "is required"}
	}
	if err := s.Params.Validate(); err != nil {
		return err
	}
	return nil
}

// Key returns the canonical identity of the subscription, combining the
// parameter key with the escaped target.
func (s *Subscription) Key() string {
	return s.Params.Key() + "target=" + url.QueryEscape(s.Target)
}
