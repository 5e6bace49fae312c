package synapse

import "sort"

// ScopeMiddlewares holds the middleware identifiers collected for one class
type ScopeMiddlewares struct {
	// Group applies to every action of the class
	Group []string `json:"group"`
	// Actions maps a method name to the middlewares declared on it
	Actions map[string][]string `json:"actions"`
}

// Clone returns a deep copy
func (s ScopeMiddlewares) Clone() ScopeMiddlewares {
	clone := ScopeMiddlewares{
		Group:   cloneStrings(s.Group),
		Actions: make(map[string][]string, len(s.Actions)),
	}
	for method, middlewares := range s.Actions {
		clone.Actions[method] = cloneStrings(middlewares)
	}
	return clone
}

// Table maps a class name to its collected middlewares
type Table map[string]ScopeMiddlewares

// Clone returns a deep copy of the table
func (t Table) Clone() Table {
	clone := make(Table, len(t))
	for className, scope := range t {
		clone[className] = scope.Clone()
	}
	return clone
}

// Classes returns the class names in the table, sorted
func (t Table) Classes() []string {
	classes := make([]string, 0, len(t))
	for className := range t {
		classes = append(classes, className)
	}
	sort.Strings(classes)
	return classes
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// uniqueStrings removes repeated entries keeping the first occurrence
func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
