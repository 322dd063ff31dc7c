package responsestore

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gncollector/internal/glassnode/metrics"
)

// ConflictPolicy decides what happens when two URLs share an endpoint name.
type ConflictPolicy string

const (
	Overwrite ConflictPolicy = "overwrite" // later response replaces the earlier one
	Reject    ConflictPolicy = "reject"    // Add fails with ErrDuplicateEndpoint
	Qualify   ConflictPolicy = "qualify"   // later response is stored as "<parent>_<name>"
)

var ErrDuplicateEndpoint = errors.New("duplicate endpoint name")

// ParseConflictPolicy validates a configured policy; empty means Overwrite.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch p := ConflictPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return Overwrite, nil
	case Overwrite, Reject, Qualify:
		return p, nil
	default:
		return "", fmt.Errorf("invalid conflict policy: %s", s)
	}
}

// Entry is one stored response body and the URL it came from.
type Entry struct {
	URL  string
	Body []byte
}

// Stored describes where Add put a response.
type Stored struct {
	Name     string
	Replaced string // URL of the overwritten response, if any
}

// MemoryResponseStore accumulates fetched bodies keyed by endpoint name.
type MemoryResponseStore struct {
	mu     sync.Mutex
	policy ConflictPolicy
	data   map[string]Entry
}

func New(policy ConflictPolicy) *MemoryResponseStore {
	if policy == "" {
		policy = Overwrite
	}
	return &MemoryResponseStore{
		policy: policy,
		data:   make(map[string]Entry),
	}
}

// Add stores body under the endpoint name of metricURL, applying the policy on collision.
func (s *MemoryResponseStore) Add(metricURL string, body []byte) (Stored, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := metrics.EndpointName(metricURL)
	prev, exists := s.data[name]
	if !exists {
		s.data[name] = Entry{URL: metricURL, Body: body}
		return Stored{Name: name}, nil
	}

	switch s.policy {
	case Reject:
		return Stored{}, fmt.Errorf("%w: %s (%s and %s)", ErrDuplicateEndpoint, name, prev.URL, metricURL)
	case Qualify:
		qualified := metrics.QualifiedEndpointName(metricURL)
		if other, taken := s.data[qualified]; taken || qualified == name {
			return Stored{}, fmt.Errorf("%w: %s (%s and %s)", ErrDuplicateEndpoint, qualified, other.URL, metricURL)
		}
		s.data[qualified] = Entry{URL: metricURL, Body: body}
		return Stored{Name: qualified}, nil
	default:
		s.data[name] = Entry{URL: metricURL, Body: body}
		return Stored{Name: name, Replaced: prev.URL}, nil
	}
}

// Get returns the entry stored under name.
func (s *MemoryResponseStore) Get(name string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[name]
	return e, ok
}

// Names returns every stored endpoint name, sorted.
func (s *MemoryResponseStore) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bodies returns a copy of the name → body mapping.
func (s *MemoryResponseStore) Bodies() map[string][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]byte, len(s.data))
	for name, e := range s.data {
		out[name] = e.Body
	}
	return out
}

// CountAll returns the number of stored responses.
func (s *MemoryResponseStore) CountAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
