// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"fmt"
	"strings"
)

// typeUniverse lists every item type the portal recognizes, in the order
// the portal documents them. Type filters preserve this order.
var typeUniverse = []string{
	"360 VR Experience",
	"CityEngine Web Scene",
	"Map Area",
	"Pro Map",
	"Web Map",
	"Web Scene",
	"Feature Collection",
	"Feature Collection Template",
	"Feature Service",
	"Geodata Service",
	"Group Layer",
	"Image Service",
	"KML",
	"KML Collection",
	"Map Service",
	"OGCFeatureServer",
	"Oriented Imagery Catalog",
	"Relational Database Connection",
	"3DTilesService",
	"Scene Service",
	"Vector Tile Service",
	"WFS",
	"WMS",
	"WMTS",
	"Geometry Service",
	"Geocoding Service",
	"Geoprocessing Service",
	"Network Analysis Service",
	"Workflow Manager Service",
	"AppBuilder Extension",
	"AppBuilder Widget Package",
	"Code Attachment",
	"Dashboard",
	"Data Pipeline",
	"Deep Learning Studio Project",
	"Esri Classification Schema",
	"Excalibur Imagery Project",
	"Experience Builder Widget",
	"Experience Builder Widget Package",
	"Form",
	"GeoBIM Application",
	"GeoBIM Project",
	"Hub Event",
	"Hub Initiative",
	"Hub Initiative Template",
	"Hub Page",
	"Hub Project",
	"Hub Site Application",
	"Insights Workbook",
	"Insights Workbook Package",
	"Insights Model",
	"Insights Page",
	"Insights Theme",
	"Insights Data Engineering Workbook",
	"Insights Data Engineering Model",
	"Investigation",
	"Knowledge Studio Project",
	"Mission",
	"Mobile Application",
	"Notebook",
	"Notebook Code Snippet Library",
	"Native Application",
	"Native Application Installer",
	"Ortho Mapping Project",
	"Ortho Mapping Template",
	"Solution",
	"StoryMap",
	"Web AppBuilder Widget",
	"Web Experience",
	"Web Experience Template",
	"Web Mapping Application",
	"Workforce Project",
	"Administrative Report",
	"Apache Parquet",
	"CAD Drawing",
	"Color Set",
	"Content Category Set",
	"CSV",
	"Document Link",
	"Earth configuration",
	"Esri Classifier Definition",
	"Export Package",
	"File Geodatabase",
	"GeoJson",
	"GeoPackage",
	"GML",
	"Image",
	"iWork Keynote",
	"iWork Numbers",
	"iWork Pages",
	"Microsoft Excel",
	"Microsoft Powerpoint",
	"Microsoft Word",
	"PDF",
	"Report Template",
	"Service Definition",
	"Shapefile",
	"SQLite Geodatabase",
	"Statistical Data Collection",
	"StoryMap Theme",
	"Style",
	"Symbol Set",
	"Visio Document",
	"ArcPad Package",
	"Compact Tile Package",
	"Explorer Map",
	"Globe Document",
	"Layout",
	"Map Document",
	"Map Package",
	"Map Template",
	"Mobile Basemap Package",
	"Mobile Map Package",
	"Mobile Scene Package",
	"Project Package",
	"Project Template",
	"Published Map",
	"Scene Document",
	"Task File",
	"Tile Package",
	"Vector Tile Package",
	"Explorer Layer",
	"Image Collection",
	"Layer",
	"Layer Package",
	"Pro Report",
	"Scene Package",
	"3DTilesPackage",
	"Desktop Style",
	"ArcGIS Pro Configuration",
	"Deep Learning Package",
	"Geoprocessing Package",
	"Geoprocessing Package (Pro version)",
	"Geoprocessing Sample",
	"Locator Package",
	"Raster function template",
	"Rule Package",
	"Pro Report Template",
	"ArcGIS Pro Add In",
	"Code Sample",
	"Desktop Add In",
	"Desktop Application",
	"Desktop Application Template",
	"Explorer Add In",
	"Survey123 Add In",
	"Workflow Manager Package",
}

var universeIndex = func() map[string]struct{} {
	m := make(map[string]struct{}, len(typeUniverse))
	for _, t := range typeUniverse {
		m[t] = struct{}{}
	}
	return m
}()

// TypeUniverse returns a copy of the known item type names.
func TypeUniverse() []string {
	return append([]string(nil), typeUniverse...)
}

// IsKnownType reports whether t is a recognized item type name.
func IsKnownType(t string) bool {
	_, ok := universeIndex[t]
	return ok
}

// FilterMode selects how a caller-supplied type set narrows the universe.
type FilterMode string

// Filter mode constants. FilterAll ignores the caller's set.
const (
	FilterAll     FilterMode = ""
	FilterInclude FilterMode = "include"
	FilterExclude FilterMode = "exclude"
)

// ParseFilterMode accepts "", "all", "include", or "exclude" in any case.
func ParseFilterMode(s string) (FilterMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "include":
		return FilterInclude, nil
	case "exclude":
		return FilterExclude, nil
	}
	return "", fmt.Errorf("%w: unknown filter mode %q (want all, include, or exclude)", ErrConfiguration, s)
}

// IsValid checks if the mode is one of the supported values.
func (m FilterMode) IsValid() bool {
	return m == FilterAll || m == FilterInclude || m == FilterExclude
}

func (m FilterMode) String() string {
	if m == FilterAll {
		return "all"
	}
	return string(m)
}

// TypeFilter is a resolved, ordered subset of the type universe.
type TypeFilter struct {
	types []string
	set   map[string]struct{}
}

// NewTypeFilter resolves mode and set against the portal type universe.
func NewTypeFilter(mode FilterMode, set []string) (TypeFilter, error) {
	return NewTypeFilterFrom(typeUniverse, mode, set)
}

// NewTypeFilterFrom resolves mode and set against universe: FilterAll
// yields the whole universe, FilterInclude the intersection with set,
// FilterExclude the universe minus set. Names in set that are not in the
// universe are ignored.
func NewTypeFilterFrom(universe []string, mode FilterMode, set []string) (TypeFilter, error) {
	if !mode.IsValid() {
		return TypeFilter{}, fmt.Errorf("%w: unknown filter mode %q (want all, include, or exclude)", ErrConfiguration, string(mode))
	}

	wanted := make(map[string]struct{}, len(set))
	for _, t := range set {
		wanted[t] = struct{}{}
	}

	f := TypeFilter{set: make(map[string]struct{})}
	for _, t := range universe {
		if _, dup := f.set[t]; dup {
			continue
		}
		_, listed := wanted[t]
		switch {
		case mode == FilterInclude && !listed:
			continue
		case mode == FilterExclude && listed:
			continue
		}
		f.types = append(f.types, t)
		f.set[t] = struct{}{}
	}
	return f, nil
}

// Contains reports whether t is part of the filter.
func (f TypeFilter) Contains(t string) bool {
	_, ok := f.set[t]
	return ok
}

// Len returns the number of types in the filter.
func (f TypeFilter) Len() int { return len(f.types) }

// IsEmpty reports whether the filter admits no types.
func (f TypeFilter) IsEmpty() bool { return len(f.types) == 0 }

// Types returns the filter's type names in universe order.
func (f TypeFilter) Types() []string {
	return append([]string(nil), f.types...)
}
