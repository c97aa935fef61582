// Package store persists typed records into a key-value store and maintains
// the derived structures that emulate relational features on top of it:
// enumerable listing, exact-match secondary indexes, uniqueness constraints,
// range-queryable sortable projections, substring-searchable projections and
// has-one relations with optional cascading writes.
//
// # Data layout
//
// Each record is a hash at "name:<primary>" mapping non-null property names
// to primitive-encoded values. Around it the engine maintains, per the
// descriptor's flags:
//
//	name:list                      insertion-order primary keys (listable)
//	name:unique:<field>:<value>    single owning primary key
//	name:index:<field>:<value>     set of primary keys sharing the value
//	name:sort:<field>              primary key -> numeric score
//	name:search:<field>            "<pk>:_id_:<lowercased value>" members
//
// After any single Save or Delete completes, the hash and every derived
// entry implied by its field values agree. There is no transaction across
// the individual store calls of one operation: a crash or a concurrent
// mutation of the same primary key mid-operation can leave derived
// structures inconsistent with the hash. Callers needing atomicity must
// serialize per primary key externally. The one exception is [Store.Filter],
// which executes inside the store with run-to-completion isolation.
//
// # Errors
//
//   - [UniquenessError] - a save would claim an already-owned unique value
//   - [ErrInvalidQuery] - malformed find/list/filter parameters
//   - [NotListableError] - listing a type not declared listable
//   - [InvalidUniqueKeyError] - GetOneBy on a non-unique lookup field
//
// Absence is not an error: GetOne and GetOneBy return a nil record.
package store
