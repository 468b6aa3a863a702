// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates configuration documents against an embedded CUE
// schema and turns CUE errors into messages that name the offending field.
//
// The flow used by the config loader is:
//
//  1. Compile the embedded schema and look up the root definition
//  2. Compile the user document and unify it with the definition
//  3. Validate (non-concrete, since most fields are optional) and decode to a map
//
//	m, err := cueutil.DecodeMap(schema, data, "#Config", cueutil.WithFilename(path))
//	if err != nil {
//	    return err // "config.cue: downloading.sendMagnetLinks: conflicting values ..."
//	}
package cueutil
