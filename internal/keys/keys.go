// Package keys computes the store key names for entity records and their
// derived structures. The layout is part of the wire contract and must not
// change: other consumers of the same store address these keys directly.
package keys

import "strings"

// searchMarker separates the primary key from the lowercased value inside a
// searchable set member.
const searchMarker = ":_id_:"

// Hash returns the key of the record hash: "name:<primary>".
func Hash(name, primary string) string {
	return name + ":" + primary
}

// List returns the key of the insertion-order list: "name:list".
func List(name string) string {
	return name + ":list"
}

// Unique returns the key of a uniqueness claim: "name:unique:<field>:<value>".
func Unique(name, field, value string) string {
	return name + ":unique:" + field + ":" + value
}

// Index returns the key of an exact-match index set: "name:index:<field>:<value>".
func Index(name, field, value string) string {
	return name + ":index:" + field + ":" + value
}

// Sort returns the key of a sortable structure: "name:sort:<field>".
func Sort(name, field string) string {
	return name + ":sort:" + field
}

// Search returns the key of a searchable set: "name:search:<field>".
func Search(name, field string) string {
	return name + ":search:" + field
}

// SearchMember encodes a searchable set member: "<primary>:_id_:<lowercased value>".
func SearchMember(primary, value string) string {
	return primary + searchMarker + strings.ToLower(value)
}

// SplitSearchMember extracts the primary key from a searchable set member.
// The second return is false if the member lacks the marker.
func SplitSearchMember(member string) (string, bool) {
	i := strings.Index(member, searchMarker)
	if i < 0 {
		return "", false
	}
	return member[:i], true
}

// Namespace returns the entity key namespace "name:", the prefix the
// composite filter evaluator resolves condition keys against.
func Namespace(name string) string {
	return name + ":"
}
