// Copyright 2023 - 2026 The cubectl Authors
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

package cube

import (
	"fmt"
	"strconv"
)

type registryEntry struct {
	list     *CodeList
	sealed   bool
	sequence map[string]int
}

// Registry deduplicates raw category values into coded resources. A registry
// belongs to the construction of exactly one cube and isn't safe for
// concurrent use.
type Registry struct {
	entries map[Category]*registryEntry
	order   []Category
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[Category]*registryEntry),
	}
}

// Name sets the name and labels of the code list of a category. The code list
// of a sealed category can't be renamed.
func (r *Registry) Name(category Category, name string, labels ...Label) error {
	e := r.entry(category)
	if e.sealed {
		return &RegistrySealedError{Category: category, Value: name}
	}
	e.list.Name = name
	e.list.Labels = append(Labels(nil), labels...)
	return nil
}

func (r *Registry) entry(category Category) *registryEntry {
	e, ok := r.entries[category]
	if !ok {
		e = &registryEntry{
			list:     newCodeList(string(category), category),
			sequence: make(map[string]int),
		}
		r.entries[category] = e
		r.order = append(r.order, category)
	}
	return e
}

// Register returns the coded resource with the given code, creating it on
// first use. Registering the same code again returns the same resource and
// leaves its labels untouched.
func (r *Registry) Register(category Category, id string, labels ...Label) (*CodedResource, error) {
	e := r.entry(category)
	if e.sealed {
		return nil, &RegistrySealedError{Category: category, Value: id}
	}
	if id == "" {
		return nil, fmt.Errorf("can't register an empty code in category %s", category)
	}
	if existing, ok := e.list.members[id]; ok {
		return existing, nil
	}
	resource := &CodedResource{Category: category, ID: id, Labels: append(Labels(nil), labels...)}
	e.list.add(resource)
	return resource, nil
}

// AssignSequentialCode returns the rank of first appearance of raw among all
// distinct values seen for the category. Values are compared verbatim.
func (r *Registry) AssignSequentialCode(category Category, raw string) (string, error) {
	e := r.entry(category)
	if e.sealed {
		return "", &RegistrySealedError{Category: category, Value: raw}
	}
	idx, ok := e.sequence[raw]
	if !ok {
		idx = len(e.sequence)
		e.sequence[raw] = idx
	}
	code := strconv.Itoa(idx)
	e.list.aliases[raw] = code
	return code, nil
}

// Seal freezes the category and returns its code list.
func (r *Registry) Seal(category Category) (*CodeList, error) {
	e, ok := r.entries[category]
	if !ok {
		return nil, fmt.Errorf("unknown category %s", category)
	}
	e.sealed = true
	return e.list, nil
}

// SealAll seals every category in order of first use.
func (r *Registry) SealAll() []*CodeList {
	lists := make([]*CodeList, 0, len(r.order))
	for _, category := range r.order {
		e := r.entries[category]
		e.sealed = true
		lists = append(lists, e.list)
	}
	return lists
}

// Sealed reports whether the category was sealed.
func (r *Registry) Sealed(category Category) bool {
	e, ok := r.entries[category]
	return ok && e.sealed
}
