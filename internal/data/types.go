package data

import (
	"sort"
	"strings"

	"github.com/paulmach/osm"
)

// Identifies a feature type such as highway_primary or building_yes
type TypeId uint16

// Features classified with this type are never stored nor rendered
const TypeIgnore TypeId = 0

// Describes a registered feature type and the kinds of features that can carry it
type TypeInfo struct {
	Id            TypeId
	Name          string
	CanBeNode     bool
	CanBeWay      bool
	CanBeArea     bool
	CanBeRelation bool
}

// Registry of feature types. Types are named after the tag that selects them, "key_value".
type TypeConfig struct {
	types  []TypeInfo
	byName map[string]TypeId
	keys   map[string]bool
}

func NewTypeConfig() *TypeConfig {
	return &TypeConfig{
		types:  []TypeInfo{{Id: TypeIgnore, Name: "ignore"}},
		byName: map[string]TypeId{"ignore": TypeIgnore},
		keys:   make(map[string]bool),
	}
}

// Registers a type, or updates its flags if the name is already known, and returns its id
func (tc *TypeConfig) RegisterType(info TypeInfo) TypeId {
	if id, ok := tc.byName[info.Name]; ok {
		info.Id = id
		tc.types[id] = info
		return id
	}

	info.Id = TypeId(len(tc.types))
	tc.types = append(tc.types, info)
	tc.byName[info.Name] = info.Id
	if key, _, ok := strings.Cut(info.Name, "_"); ok {
		tc.keys[key] = true
	}
	return info.Id
}

func (tc *TypeConfig) GetTypeId(name string) TypeId {
	return tc.byName[name]
}

func (tc *TypeConfig) GetTypeInfo(id TypeId) (TypeInfo, bool) {
	if int(id) >= len(tc.types) || id == TypeIgnore {
		return TypeInfo{}, false
	}
	return tc.types[id], true
}

// Returns every registered type except TypeIgnore
func (tc *TypeConfig) GetTypes() []TypeInfo {
	return append([]TypeInfo(nil), tc.types[1:]...)
}

// Maps tags to the first registered "key_value" type, trying keys in the order the tags appear.
// Returns TypeIgnore when no tag matches.
func (tc *TypeConfig) ClassifyTags(tags osm.Tags) TypeId {
	for _, tag := range tags {
		if !tc.keys[tag.Key] {
			continue
		}
		if id, ok := tc.byName[tag.Key+"_"+tag.Value]; ok {
			return id
		}
	}
	return TypeIgnore
}

// Builds the type registry used when no other one is configured
func DefaultTypeConfig() *TypeConfig {
	tc := NewTypeConfig()

	for _, name := range []string{
		"highway_motorway", "highway_trunk", "highway_primary", "highway_secondary",
		"highway_tertiary", "highway_residential", "highway_service", "highway_footway",
		"highway_cycleway", "railway_rail", "waterway_river", "waterway_stream",
	} {
		tc.RegisterType(TypeInfo{Name: name, CanBeWay: true, CanBeRelation: true})
	}
	for _, name := range []string{
		"building_yes", "landuse_residential", "landuse_grass", "landuse_forest",
		"leisure_park", "natural_water", "natural_wood", "amenity_parking",
	} {
		tc.RegisterType(TypeInfo{Name: name, CanBeArea: true, CanBeRelation: true})
	}
	for _, name := range []string{
		"place_city", "place_town", "place_suburb", "amenity_cafe", "amenity_restaurant",
		"railway_station", "highway_bus_stop",
	} {
		tc.RegisterType(TypeInfo{Name: name, CanBeNode: true})
	}
	return tc
}

// Set of feature types
type TypeSet map[TypeId]struct{}

func NewTypeSet(ids ...TypeId) TypeSet {
	set := make(TypeSet, len(ids))
	for _, id := range ids {
		set.Add(id)
	}
	return set
}

func (s TypeSet) Add(id TypeId) {
	s[id] = struct{}{}
}

func (s TypeSet) Has(id TypeId) bool {
	_, ok := s[id]
	return ok
}

// Returns the union of s and other as a new set
func (s TypeSet) Union(other TypeSet) TypeSet {
	out := make(TypeSet, len(s)+len(other))
	for id := range s {
		out.Add(id)
	}
	for id := range other {
		out.Add(id)
	}
	return out
}

// Returns the type ids in ascending order
func (s TypeSet) Ids() []TypeId {
	ids := make([]TypeId, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
