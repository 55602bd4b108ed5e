// The server keeps many named lists. IndexedLinkedList is not thread-safe, so the registry owns every list and
// serializes access to it. Names are distributed over shards by their xxhash; each shard has its own lock, so
// commands on lists living in different shards don't contend with each other.

package port

import (
	"flag"
	"maps"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/nobletooth/tlist/pkg/collection"
	"github.com/nobletooth/tlist/pkg/utils"
)

var registryShardCount = flag.Int("registry_shard_count", 16, "Number of lock shards of the list registry.")

// StringList is the list type served by the port.
type StringList = collection.IndexedLinkedList[string]

// registryShard owns the lists whose names hash into it.
type registryShard struct {
	mux   sync.RWMutex
	lists map[string]*StringList
}

// Registry maps names to lists. An absent name behaves like an empty list; lists that become empty are dropped.
type Registry struct {
	shards []*registryShard
}

// NewRegistry creates a registry with `shardCount` lock shards.
func NewRegistry(shardCount int) *Registry {
	if shardCount <= 0 {
		utils.RaiseInvariant("registry", "non_positive_shard_count",
			"Invalid shard count has been given to list registry.", "shardCount", shardCount)
		shardCount = 1
	}
	registry := &Registry{shards: make([]*registryShard, shardCount)}
	for i := range shardCount {
		registry.shards[i] = &registryShard{lists: make(map[string]*StringList)}
	}
	return registry
}

// NewRegistryFromFlags creates a registry sized by --registry_shard_count.
func NewRegistryFromFlags() *Registry {
	return NewRegistry(*registryShardCount)
}

// getShard picks the shard owning `name`.
func (r *Registry) getShard(name string) *registryShard {
	return r.shards[xxhash.Sum64String(name)%uint64(len(r.shards))]
}

// View runs `fn` on the list named `name` under a read lock. `fn` must not modify the list.
func (r *Registry) View(name string, fn func(list *StringList) error) error {
	shard := r.getShard(name)
	shard.mux.RLock()
	defer shard.mux.RUnlock()

	list, found := shard.lists[name]
	if !found {
		list = collection.New[string]()
	}
	return fn(list)
}

// Update runs `fn` on the list named `name` under a write lock, creating the list if needed.
func (r *Registry) Update(name string, fn func(list *StringList) error) error {
	shard := r.getShard(name)
	shard.mux.Lock()
	defer shard.mux.Unlock()

	list, found := shard.lists[name]
	if !found {
		list = collection.New[string]()
	}
	err := fn(list)
	// Bulk operations may have partially applied before failing, so store the list regardless of `err`.
	if list.Count() == 0 {
		delete(shard.lists, name)
	} else if !found {
		shard.lists[name] = list
	}
	return err
}

// Snapshot returns a copy of the list named `name`.
func (r *Registry) Snapshot(name string) *StringList {
	var snapshot *StringList
	_ = r.View(name, func(list *StringList) error {
		snapshot = collection.FromSlice(list.ToSlice())
		return nil
	})
	return snapshot
}

// Delete drops the given lists and returns how many existed.
func (r *Registry) Delete(names ...string) int {
	deleted := 0
	for _, name := range names {
		shard := r.getShard(name)
		shard.mux.Lock()
		if _, found := shard.lists[name]; found {
			delete(shard.lists, name)
			deleted++
		}
		shard.mux.Unlock()
	}
	return deleted
}

// Names returns the sorted names of all non-empty lists.
func (r *Registry) Names() []string {
	names := make([]string, 0)
	for _, shard := range r.shards {
		shard.mux.RLock()
		names = slices.AppendSeq(names, maps.Keys(shard.lists))
		shard.mux.RUnlock()
	}
	slices.Sort(names)
	return names
}
