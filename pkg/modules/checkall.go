package modules

import (
	"fmt"
	"sort"
	"sync"

	"lunatype/pkg/checker"
	"lunatype/pkg/diag"
	"lunatype/pkg/intern"
)

// CheckAll type-checks every module, dependencies before dependents.
// Modules with no path between them check concurrently. names must be
// the interner that built the chunks' identifiers; every checker
// shares it so predeclared names resolve against the trees. It
// returns the registry of public surfaces and all diagnostics in
// module name order. A require cycle or a missing dependency is an
// error; no checking happens in that case.
func CheckAll(mods []*Module, names *intern.Interner, opts checker.Options) (*Registry, []diag.Diagnostic, error) {
	levels, err := scheduleLevels(mods)
	if err != nil {
		return nil, nil, err
	}
	if names == nil {
		names = intern.New()
	}

	registry := NewRegistry()
	resolverOpts := opts
	resolverOpts.Resolver = registry

	results := make(map[string][]diag.Diagnostic, len(mods))
	var resultsMu sync.Mutex

	for _, level := range levels {
		var wg sync.WaitGroup
		for _, mod := range level {
			wg.Add(1)
			go func(mod *Module) {
				defer wg.Done()
				sink := &diag.List{}
				c := checker.New(names, sink, resolverOpts)
				table := c.Check(mod.Chunk, mod.File)
				registry.Publish(mod.Name, table)
				resultsMu.Lock()
				results[mod.Name] = sink.All()
				resultsMu.Unlock()
			}(mod)
		}
		wg.Wait()
	}

	ordered := make([]string, 0, len(results))
	for name := range results {
		ordered = append(ordered, name)
	}
	sort.Strings(ordered)
	var all []diag.Diagnostic
	for _, name := range ordered {
		all = append(all, results[name]...)
	}
	return registry, all, nil
}

// scheduleLevels groups modules into dependency levels: level 0 has
// no requires, level n+1 requires only levels <= n.
func scheduleLevels(mods []*Module) ([][]*Module, error) {
	byName := make(map[string]*Module, len(mods))
	for _, m := range mods {
		if _, dup := byName[m.Name]; dup {
			return nil, fmt.Errorf("module %q defined twice", m.Name)
		}
		byName[m.Name] = m
	}

	indegree := make(map[string]int, len(mods))
	dependents := make(map[string][]string)
	for _, m := range mods {
		for _, req := range m.Requires {
			if _, known := byName[req]; !known {
				return nil, fmt.Errorf("module %q requires unknown module %q", m.Name, req)
			}
			indegree[m.Name]++
			dependents[req] = append(dependents[req], m.Name)
		}
	}

	ready := make([]*Module, 0, len(mods))
	for _, m := range mods {
		if indegree[m.Name] == 0 {
			ready = append(ready, m)
		}
	}
	sortModules(ready)

	var levels [][]*Module
	scheduled := 0
	for len(ready) > 0 {
		level := ready
		levels = append(levels, level)
		scheduled += len(level)
		ready = nil
		for _, m := range level {
			for _, dep := range dependents[m.Name] {
				indegree[dep]--
				if indegree[dep] == 0 {
					ready = append(ready, byName[dep])
				}
			}
		}
		sortModules(ready)
	}

	if scheduled != len(mods) {
		var stuck []string
		for name, n := range indegree {
			if n > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("require cycle involving %v", stuck)
	}
	return levels, nil
}

func sortModules(mods []*Module) {
	sort.Slice(mods, func(i, j int) bool { return mods[i].Name < mods[j].Name })
}
