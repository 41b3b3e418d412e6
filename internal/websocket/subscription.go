package websocket

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var ErrUnknownEntity = errors.New("unknown entity")

// Control message actions a client may send
const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

// ControlMessage is the only kind of message clients send, e.g.
// {"action":"subscribe","entities":["budget"]}
type ControlMessage struct {
	Action   string       `json:"action"`
	Entities []EntityType `json:"entities"`
}

// SubscribableEntities lists the ledger entities a client can follow
var SubscribableEntities = []EntityType{EntityTypeTransaction, EntityTypeAccount, EntityTypeBudget}

func isSubscribable(entity EntityType) bool {
	for _, e := range SubscribableEntities {
		if e == entity {
			return true
		}
	}
	return false
}

// ParseEntities parses a comma separated entity list such as
// "transaction,budget". An empty string means every entity.
func ParseEntities(raw string) ([]EntityType, error) {
	if strings.TrimSpace(raw) == "" {
		return append([]EntityType(nil), SubscribableEntities...), nil
	}

	var entities []EntityType
	for _, part := range strings.Split(raw, ",") {
		entity := EntityType(strings.TrimSpace(part))
		if !isSubscribable(entity) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, part)
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// Subscription is the set of entities a connection receives events for.
// Session events are always delivered.
type Subscription struct {
	mu       sync.RWMutex
	entities map[EntityType]bool
}

// NewSubscription creates a subscription to the given entities
func NewSubscription(entities []EntityType) *Subscription {
	s := &Subscription{entities: make(map[EntityType]bool)}
	for _, e := range entities {
		s.entities[e] = true
	}
	return s
}

// Wants reports whether an event about entity should be delivered
func (s *Subscription) Wants(entity EntityType) bool {
	if entity == EntityTypeSession {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entities[entity]
}

// Apply updates the subscription from a control message. Nothing changes
// if any entity in the message is unknown.
func (s *Subscription) Apply(msg ControlMessage) error {
	if msg.Action != ActionSubscribe && msg.Action != ActionUnsubscribe {
		return fmt.Errorf("unknown action %q", msg.Action)
	}
	if len(msg.Entities) == 0 {
		return errors.New("entities are required")
	}
	for _, e := range msg.Entities {
		if !isSubscribable(e) {
			return fmt.Errorf("%w: %q", ErrUnknownEntity, e)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range msg.Entities {
		if msg.Action == ActionSubscribe {
			s.entities[e] = true
		} else {
			delete(s.entities, e)
		}
	}
	return nil
}

// Entities returns the subscribed entities in sorted order
func (s *Subscription) Entities() []EntityType {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]EntityType, 0, len(s.entities))
	for e := range s.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
