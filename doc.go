// SPDX-FileCopyrightText: © 2024 Donald Hoelle. All rights reserved.
// SPDX-License-Identifier: MIT
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package [tidy] normalizes semi-structured data and exposes the result
// through exact-key and dot-path access.
//
// An [Engine] walks an arbitrary Go value (maps, slices, structs, scalars)
// and canonicalizes "empty-like" strings into nil:
//
//	e := tidy.New(tidy.DefaultConfig())
//	v, _ := e.Normalize(map[string]any{
//	  "item":        "  ",
//	  "date.upload": "2024-01-01",
//	  "nested":      map[string]any{"x": "n/a", "y": " value "},
//	})
//	c := v.(*tidy.Container)
//	c.Get("item")        // nil
//	c.Get("nested.x")    // nil
//	c.Get("nested.y")    // "value"
//	c.Get("date.upload") // "2024-01-01"
//
// # Classification
//
// [Classify] trims strings and turns them into nil when they are empty or
// match one of the configured sentinel values. By default sentinels are
// compared after removing everything but letters and digits, so "N / A",
// "n-a" and "NA" all match "n/a". Set [Config].NAMatchMode to [MatchExact]
// to compare the lower-cased, trimmed strings instead.
//
// A [Config] can be built from any key/value source with [ConfigFrom], or
// read from YAML with [LoadConfig]:
//
//	tidy:
//	  treat_empty_string_as_null: true
//	  treat_whitespace_as_empty: false
//	  na_match_mode: exact
//	  na_values: [n/a, none]
//
// # Lookup
//
// A [Container] resolves a key in two phases. An exact match on the
// top-level keys always wins, even when the key contains dots. Otherwise the
// key is split on every dot not preceded by a backslash and the segments are
// resolved one level at a time. Within a segment, `\.` stands for a literal
// dot and `\\` for a literal backslash:
//
//	c.Get(`date\.upload`)      // the literal key "date.upload"
//	c.Get("a.b.c")             // c["a"]["b"]["c"]
//	c.Get(tidy.JoinPath("a.b", "c")) // c["a.b"]["c"]
//
// Missing keys resolve to nil, or to the default given to
// [Container.GetOr]; lookups never fail.
//
// # Object-like values
//
// Values that are not maps or slices are converted to mappings by the
// first capability they have, in order: [Mapper], [Serializer], then the
// exported struct fields, named by their json tags. Field values are
// converted the same way, so a field holding a Mapper goes through ToMap.
// [Probe] reports which one applies. Values that encode themselves, such as
// time.Time, are kept as scalars.
//
// # Collections
//
// Containers carry the usual collection operations (filter, map, group,
// sort, chunk, aggregate and more). They operate on the top-level items and
// return a new Container; only [Container.Set], [Container.Unset] and
// [Container.Forget] modify the receiver. Operations that pick a value out
// of each element take a [Retriever], usually built with [ByPath];
// operations that select elements take a [Predicate], usually built with
// [Cond].
//
// # Encoding
//
// Containers encode to JSON through [github.com/go-json-experiment/json]
// and to YAML through gopkg.in/yaml.v3, keeping insertion order in both.
// Containers built from sequences, or whose keys are exactly "0".."n-1",
// encode as arrays.
//
// [github.com/go-json-experiment/json]: https://github.com/go-json-experiment/json
package tidy
