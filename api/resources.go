/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wacul/ptr"

	"github.com/blnkfinance/sieve"
	"github.com/blnkfinance/sieve/database"
	"github.com/blnkfinance/sieve/internal/apierror"
	"github.com/blnkfinance/sieve/profile"
)

// ResourceSummary describes one catalog resource.
type ResourceSummary struct {
	Name         string   `json:"name"`
	Namespace    string   `json:"namespace"`
	DefaultScope string   `json:"default_scope,omitempty"`
	Scopes       []string `json:"scopes"`
	Filters      []string `json:"filters"`
	Sorters      []string `json:"sorters"`
	Searchable   bool     `json:"searchable"`
}

// SortLinks are the links of one sorter. Direction and Reset are only set
// while the sorter is active.
type SortLinks struct {
	Direction string `json:"direction,omitempty"`
	Toggle    string `json:"toggle"`
	Reset     string `json:"reset,omitempty"`
}

// Links are canonical URLs for the states reachable from the current one.
type Links struct {
	Self   string               `json:"self"`
	All    string               `json:"all"`
	Scopes map[string]string    `json:"scopes"`
	Sort   map[string]SortLinks `json:"sort"`
	Clear  map[string]string    `json:"clear"`
}

// Listing is the response of GET /resources/:name.
type Listing struct {
	Data  []database.Row `json:"data"`
	State sieve.State    `json:"state"`
	Scope string         `json:"scope,omitempty"`
	Links Links          `json:"links"`
}

func respondError(c *gin.Context, err error) {
	resp := apierror.From(err)
	resp.Details = nil
	c.JSON(apierror.MapErrorToHTTPStatus(err), resp)
}

func (a Api) entry(c *gin.Context) (*profile.Entry, bool) {
	name := c.Param("name")
	entry, ok := a.catalog.Get(name)
	if !ok {
		respondError(c, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("resource %q not found", name), nil))
		return nil, false
	}
	return entry, true
}

func summarize(name string, p *sieve.Profile) ResourceSummary {
	return ResourceSummary{
		Name:         name,
		Namespace:    p.Namespace(),
		DefaultScope: p.DefaultScope(),
		Scopes:       p.Scopes(),
		Filters:      p.Filters(),
		Sorters:      p.Sorters(),
		Searchable:   p.Searchable(),
	}
}

func (a Api) ListResources(c *gin.Context) {
	resp := make([]ResourceSummary, 0, a.catalog.Len())
	for _, name := range a.catalog.Names() {
		entry, _ := a.catalog.Get(name)
		resp = append(resp, summarize(name, entry.Profile))
	}
	c.JSON(http.StatusOK, resp)
}

// GetResource lists the rows of a resource narrowed by the scope, search,
// sort and filter parameters of the request.
//
// Responses:
// - 200 OK: The rows, the extracted state and links to neighbouring states.
// - 400 Bad Request: When the compiled query cannot be rendered.
// - 404 Not Found: When the resource is not in the catalog.
func (a Api) GetResource(c *gin.Context) {
	entry, ok := a.entry(c)
	if !ok {
		return
	}
	p := entry.Profile

	q, state := p.Resolve(a.source.Query(entry.Resource), c.Request.URL.Query())
	query, ok := q.(database.Query)
	if !ok {
		respondError(c, apierror.NewAPIError(apierror.ErrInternalServer, "Query could not be compiled", nil))
		return
	}

	rows, err := a.source.All(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Listing{
		Data:  rows,
		State: state,
		Scope: p.EffectiveScope(state),
		Links: buildLinks(p, c.Request.URL.Path, state),
	})
}

// GetResourceFilters returns the filter metadata of a resource, evaluating
// choices.
func (a Api) GetResourceFilters(c *gin.Context) {
	entry, ok := a.entry(c)
	if !ok {
		return
	}
	infos, err := entry.Profile.Describe()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, infos)
}

func buildLinks(p *sieve.Profile, base string, state sieve.State) Links {
	links := Links{
		Self:   p.URL(base, state, sieve.Delta{}),
		All:    p.URL(base, state, sieve.Delta{Scope: ptr.String("")}),
		Scopes: map[string]string{},
		Sort:   map[string]SortLinks{},
		Clear:  map[string]string{},
	}
	for _, scope := range p.Scopes() {
		links.Scopes[scope] = p.URL(base, state, sieve.Delta{Scope: ptr.String(scope)})
	}
	for _, sorter := range p.Sorters() {
		sl := SortLinks{Toggle: p.URL(base, state, sieve.Delta{Sort: sorter})}
		if state.Sorted(sorter) {
			sl.Direction = string(state.Direction(sorter))
			sl.Reset = p.URL(base, state, sieve.Delta{Sort: sorter, Reset: true})
		}
		links.Sort[sorter] = sl
	}
	for _, key := range p.Filters() {
		if _, ok := state.Filters[key]; ok {
			links.Clear[key] = p.URL(base, state, sieve.Delta{Clear: []string{key}})
		}
	}
	return links
}
