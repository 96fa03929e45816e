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
	"cmp"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Category names the class of coded resources a code list holds, e.g. County.
type Category string

const (
	County      Category = "County"
	Region      Category = "Region"
	FieldOfCare Category = "FieldOfCare"
)

// Label is a language tagged literal. An empty Lang means an untagged literal.
type Label struct {
	Value string `yaml:"value" json:"value"`
	Lang  string `yaml:"lang" json:"lang,omitempty"`
}

// Labels is an ordered set of labels.
type Labels []Label

// Get returns the label in the given language, falling back to the first one.
func (l Labels) Get(lang string) string {
	for _, label := range l {
		if label.Lang == lang {
			return label.Value
		}
	}
	if len(l) > 0 {
		return l[0].Value
	}
	return ""
}

// CodedResource is one member of a code list. Its identity is (Category, ID).
type CodedResource struct {
	Category Category
	ID       string
	Labels   Labels
}

// Key returns the identity of the resource as a single string.
func (r *CodedResource) Key() string {
	if r == nil {
		return ""
	}
	return string(r.Category) + "/" + r.ID
}

func (r *CodedResource) String() string {
	return r.Key()
}

// Hierarchy describes broader/narrower relations between members of a code list.
type Hierarchy struct {
	Roots    []*CodedResource
	Narrower map[*CodedResource][]*CodedResource
}

// CodeList is the sealed set of coded resources of one category.
type CodeList struct {
	Name      string
	Category  Category
	Labels    Labels
	Hierarchy *Hierarchy

	members map[string]*CodedResource
	aliases map[string]string
	order   []string
}

func newCodeList(name string, category Category) *CodeList {
	return &CodeList{
		Name:     name,
		Category: category,
		members:  make(map[string]*CodedResource),
		aliases:  make(map[string]string),
	}
}

// NewCodeList creates a code list holding the given resources. Resources of a
// foreign category or duplicate ids are rejected.
func NewCodeList(name string, category Category, resources ...*CodedResource) (*CodeList, error) {
	cl := newCodeList(name, category)
	for _, r := range resources {
		if r.Category != category {
			return nil, fmt.Errorf("resource %s doesn't belong to category %s", r, category)
		}
		if _, ok := cl.members[r.ID]; ok {
			return nil, fmt.Errorf("duplicate resource %s in code list %s", r, name)
		}
		cl.add(r)
	}
	return cl, nil
}

func (cl *CodeList) add(r *CodedResource) {
	cl.members[r.ID] = r
	cl.order = append(cl.order, r.ID)
}

// Contains reports whether r is the member of the code list with the same identity.
func (cl *CodeList) Contains(r *CodedResource) bool {
	if cl == nil || r == nil || r.Category != cl.Category {
		return false
	}
	member, ok := cl.members[r.ID]
	return ok && member == r
}

// Lookup returns the member with the given code.
func (cl *CodeList) Lookup(id string) (*CodedResource, bool) {
	if cl == nil {
		return nil, false
	}
	r, ok := cl.members[id]
	return r, ok
}

// Resolve maps a raw input value to a member. Raw values that were assigned a
// sequential code are resolved through their alias, everything else by code.
func (cl *CodeList) Resolve(raw string) (*CodedResource, bool) {
	if cl == nil {
		return nil, false
	}
	if id, ok := cl.aliases[raw]; ok {
		return cl.Lookup(id)
	}
	return cl.Lookup(raw)
}

// Members returns the resources in registration order.
func (cl *CodeList) Members() []*CodedResource {
	if cl == nil {
		return nil
	}
	members := make([]*CodedResource, 0, len(cl.order))
	for _, id := range cl.order {
		members = append(members, cl.members[id])
	}
	return members
}

func (cl *CodeList) Len() int {
	if cl == nil {
		return 0
	}
	return len(cl.order)
}

// compareCodes orders integer codes numerically before all other codes, which
// are ordered lexicographically. Integer codes of the same value, like 01 and
// 1, are ordered by their text.
func compareCodes(a, b string) int {
	ai, aok := parseInt(a)
	bi, bok := parseInt(b)
	switch {
	case aok && bok:
		if c := cmp.Compare(ai, bi); c != 0 {
			return c
		}
	case aok:
		return -1
	case bok:
		return 1
	}
	return strings.Compare(a, b)
}

func parseInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

// SortResources orders resources by category and code.
func SortResources(resources []*CodedResource) {
	sort.SliceStable(resources, func(i, j int) bool {
		if resources[i].Category != resources[j].Category {
			return resources[i].Category < resources[j].Category
		}
		return compareCodes(resources[i].ID, resources[j].ID) < 0
	})
}
