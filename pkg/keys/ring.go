package keys

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Slots is the fixed set of selectors a caller may send in the X-API-Key header.
var Slots = []string{"API_KEY_1", "API_KEY_2", "API_KEY_3", "API_KEY_4", "API_KEY_5"}

type SlotStatus struct {
	Selector   string `json:"selector"`
	Configured bool   `json:"configured"`
}

// Ring maps selectors to secrets. It is built once at startup and never mutated.
type Ring struct {
	secrets map[string]string
}

func NewRing(secrets map[string]string) (*Ring, error) {
	ring := &Ring{secrets: make(map[string]string, len(Slots))}

	for selector, secret := range secrets {
		if !IsKnownSlot(selector) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSlot, selector)
		}

		ring.secrets[selector] = strings.TrimSpace(secret)
	}

	if len(ring.ConfiguredSlots()) == 0 {
		return nil, ErrNoKeysConfigured
	}

	return ring, nil
}

func (r *Ring) Resolve(selector string) (string, error) {
	if selector == "" {
		return "", ErrSelectorMissing
	}

	if !IsKnownSlot(selector) {
		return "", ErrInvalidSelector
	}

	secret := r.secrets[selector]
	if secret == "" {
		return "", ErrKeyNotConfigured
	}

	return secret, nil
}

func (r *Ring) ConfiguredSlots() []string {
	configured := make([]string, 0, len(r.secrets))
	for selector, secret := range r.secrets {
		if secret != "" {
			configured = append(configured, selector)
		}
	}

	sort.Strings(configured)
	return configured
}

func (r *Ring) Status() []SlotStatus {
	status := make([]SlotStatus, len(Slots))
	for i, selector := range Slots {
		status[i] = SlotStatus{
			Selector:   selector,
			Configured: r.secrets[selector] != "",
		}
	}

	return status
}

func IsKnownSlot(selector string) bool {
	for _, slot := range Slots {
		if slot == selector {
			return true
		}
	}

	return false
}

var (
	ErrSelectorMissing  = errors.New("api key selector is missing")
	ErrInvalidSelector  = errors.New("invalid api key selector")
	ErrKeyNotConfigured = errors.New("api key not configured or empty")
	ErrUnknownSlot      = errors.New("unknown API key slot")
	ErrNoKeysConfigured = errors.New("no API key slot is configured")
)
