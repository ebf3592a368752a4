// Package hooks implements observe-only pre/post invocation callbacks keyed
// by operation name, grounded on graphrecord/plugin.rs + plugins.rs.
// Observers cannot veto or mutate the operation they observe.
package hooks

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Invocation is the payload handed to every observer, carrying a
// correlation ID so a pre/post pair (and any external log lines keyed off
// it) can be joined.
type Invocation struct {
	ID        uuid.UUID
	Operation string
	At        time.Time
	Args      any
	Err       error // only populated on the post callback
}

type Observer func(Invocation)

type Registry struct {
	mu   sync.RWMutex
	pre  map[string][]Observer
	post map[string][]Observer
}

func New() *Registry {
	return &Registry{
		pre:  make(map[string][]Observer),
		post: make(map[string][]Observer),
	}
}

func (r *Registry) Before(operation string, obs Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pre[operation] = append(r.pre[operation], obs)
}

func (r *Registry) After(operation string, obs Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.post[operation] = append(r.post[operation], obs)
}

// Invoke runs fn between the operation's before/after observers, tagging
// both with the same invocation ID.
func (r *Registry) Invoke(operation string, args any, fn func() error) error {
	inv := Invocation{ID: uuid.New(), Operation: operation, At: time.Now(), Args: args}

	r.mu.RLock()
	pre := append([]Observer(nil), r.pre[operation]...)
	post := append([]Observer(nil), r.post[operation]...)
	r.mu.RUnlock()

	for _, obs := range pre {
		obs(inv)
	}

	err := fn()

	inv.Err = err
	for _, obs := range post {
		obs(inv)
	}

	return err
}
