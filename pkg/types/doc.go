// Package types provides the connection type registry for node canvases.
//
// # Overview
//
// Every port on a node carries a connection type name such as "Float". The
// [Registry] maps these names to a [Data] record holding display metadata
// (color) and the native Go types carried by inputs and outputs. The canvas
// consults the registry when validating connections and when computing the
// default value of an unconnected input.
//
// # Population
//
// Registries are built from an explicit list of [Declaration] values:
//
//	reg, err := types.New(logger, types.Builtin()...)
//
// [Registry.Populate] clears and rebuilds the registry, so repeating it with
// the same declarations never duplicates entries. Two declarations with the
// same name fail with DUPLICATE_TYPE, which indicates a registration bug.
//
// # Unknown Types
//
// [Registry.Resolve] fails with UNKNOWN_TYPE for names that are not
// registered. [Registry.Lookup] is the lenient variant used by display and
// graph code: it logs a warning and returns the first registered type, so a
// canvas saved against an older registry still loads.
//
// # Compatibility
//
// An output may feed an input when the type names match, when the input type
// lists the output type in [Data.Accepts], or when the output's native type
// is assignable to the input's native type. See [Registry.Compatible].
package types
