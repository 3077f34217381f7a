// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sqlmap

import (
	"sync"

	"github.com/gosqlmap/gosqlmap/cache"
	"github.com/gosqlmap/gosqlmap/mapping"
	"github.com/gosqlmap/gosqlmap/types"
	"github.com/pkg/errors"
)

// Configuration is the engine-wide registry every SqlSession opened from
// the same SqlSessionFactory shares: loaded MappedStatements, ResultMaps,
// namespace L2 caches, the scalar TypeHandler registry, and result-object
// Factories. Mutating methods (AddMappedStatement, AddResultMap,
// NewNamespaceCache, UseCacheRef) are meant to run once at startup before
// any session opens; reads are safe for concurrent use by many sessions
// afterward.
type Configuration struct {
	Environment *Environment
	AutoMapping types.AutoMappingBehavior

	mu         sync.RWMutex
	statements map[string]*types.MappedStatement
	resultMaps map[string]*types.ResultMap
	caches     map[string]cache.Cache
	cacheRefs  map[string]string // namespace -> the namespace whose cache it shares
	registry   *types.Registry
	factories  map[string]mapping.Factory
}

// NewConfiguration returns an empty Configuration wired to env, with the
// built-in scalar TypeHandler registry pre-populated.
func NewConfiguration(env *Environment) *Configuration {
	return &Configuration{
		Environment: env,
		AutoMapping: types.AutoMapPartial,
		statements:  make(map[string]*types.MappedStatement),
		resultMaps:  make(map[string]*types.ResultMap),
		caches:      make(map[string]cache.Cache),
		cacheRefs:   make(map[string]string),
		registry:    types.NewRegistry(),
		factories:   make(map[string]mapping.Factory),
	}
}

// TypeHandlerRegistry exposes the scalar type-handler registry, so callers
// can Register project-specific handlers before opening any session.
func (c *Configuration) TypeHandlerRegistry() *types.Registry { return c.registry }

// RegisterFactory associates typeName (a ResultMap.Type string) with a
// constructor, standing in for MyBatis's reflective Class.newInstance()
// (see package mapping's doc comment on Factory).
func (c *Configuration) RegisterFactory(typeName string, f mapping.Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[typeName] = f
}

// AddMappedStatement registers ms, keyed by its own ID when it carries no
// DatabaseID, or by ID+"§"+DatabaseID otherwise, so multiple
// databaseId-scoped variants of the same statement id can coexist
// (spec.md §6's `databaseId="..."` attribute).
func (c *Configuration) AddMappedStatement(ms *types.MappedStatement) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := ms.ID
	if ms.DatabaseID != "" {
		key = ms.ID + "§" + ms.DatabaseID
	} else if _, exists := c.statements[key]; exists {
		return types.ErrConfiguration.New("duplicate mapped statement id " + ms.ID)
	}
	c.statements[key] = ms
	return nil
}

// MappedStatement resolves id against the environment's configured
// DatabaseID first, falling back to the databaseId-less variant
// (SPEC_FULL §5's databaseId resolution order). Implements
// mapping.StatementLookup and binding's id-lookup needs.
func (c *Configuration) MappedStatement(id string) (*types.MappedStatement, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Environment != nil && c.Environment.DatabaseID != "" {
		if ms, ok := c.statements[id+"§"+c.Environment.DatabaseID]; ok {
			return ms, true
		}
	}
	ms, ok := c.statements[id]
	return ms, ok
}

// AddResultMap registers rm under its own id; duplicate ids are rejected,
// since a ResultMap (unlike a MappedStatement) never varies by database.
func (c *Configuration) AddResultMap(rm *types.ResultMap) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.resultMaps[rm.ID]; exists {
		return types.ErrConfiguration.New("duplicate result map id " + rm.ID)
	}
	c.resultMaps[rm.ID] = rm
	return nil
}

// ResultMap implements mapping.ResultMapLookup.
func (c *Configuration) ResultMap(id string) (*types.ResultMap, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rm, ok := c.resultMaps[id]
	return rm, ok
}

// NewNamespaceCache registers c's own decorator-stack cache for namespace,
// the target statements in that namespace mark UsesCache/FlushCache
// against.
func (cfg *Configuration) NewNamespaceCache(namespace string, c cache.Cache) {
	cfg.mu.Lock()
	defer cfg.mu.Unlock()
	cfg.caches[namespace] = c
}

// UseCacheRef makes namespace share refNamespace's already-registered L2
// cache instance (spec.md §6's `<cache-ref>`), rather than a copy.
// Returns ErrConfiguration if refNamespace's cache is not yet registered;
// callers with forward references should defer resolution (spec.md §7's
// deferred-result-map pattern, applied analogously here) until every
// mapper has loaded.
func (cfg *Configuration) UseCacheRef(namespace, refNamespace string) error {
	cfg.mu.Lock()
	defer cfg.mu.Unlock()
	shared, ok := cfg.caches[refNamespace]
	if !ok {
		return errors.Wrapf(types.ErrConfiguration.New("cache-ref"), "namespace %q references unregistered cache namespace %q", namespace, refNamespace)
	}
	cfg.caches[namespace] = shared
	cfg.cacheRefs[namespace] = refNamespace
	return nil
}

// namespaceCaches returns the namespace->Cache map a session's
// CachingExecutor reads from, unexported since callers mutate it only
// through NewNamespaceCache/UseCacheRef.
func (c *Configuration) namespaceCaches() map[string]cache.Cache {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]cache.Cache, len(c.caches))
	for k, v := range c.caches {
		out[k] = v
	}
	return out
}
