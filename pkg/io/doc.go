// Package io provides JSON and TOML import and export for canvases.
//
// # Overview
//
// A canvas file holds the structural data of a graph: its nodes (kind,
// position, size, field values) and its connections. Computed port values
// are not stored; a full recalculation after import restores them.
//
// # JSON Format
//
//	{
//	  "name": "demo",
//	  "nodes": [
//	    {"id": "a", "kind": "inputNode", "name": "Input Node",
//	     "position": {"x": 0, "y": 0}, "size": {"x": 200, "y": 50},
//	     "fields": {"value": 5}}
//	  ],
//	  "connections": [
//	    {"from": "a", "from_port": 0, "to": "b", "to_port": 0}
//	  ]
//	}
//
// Ports are addressed by their index in the node's port list. Node IDs are
// preserved verbatim across export and import.
//
// # TOML Format
//
// The TOML form carries the same data, with nodes and connections as arrays
// of tables:
//
//	name = "demo"
//
//	[[nodes]]
//	id = "a"
//	kind = "inputNode"
//	[nodes.position]
//	x = 0.0
//	y = 0.0
//	[nodes.fields]
//	value = 5.0
//
//	[[connections]]
//	from = "a"
//	from_port = 0
//	to = "b"
//	to_port = 0
//
// # Files
//
// [ImportFile] and [ExportFile] choose the format from the extension (.json
// or .toml). Export writes through a temporary file so a failed write never
// truncates an existing canvas.
//
// # Round Trip
//
// Exporting a graph and importing it again yields a graph with identical node
// kinds, field values, positions and connection topology. Import validates
// every connection through the same checks a live edit uses.
package io
