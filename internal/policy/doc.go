// Package policy constrains profiles with a CUE definition.
//
// A policy file declares a #Profile definition that every profile must
// satisfy before the directory writes anything:
//
//	#Profile: {
//		username: =~"^[a-z0-9_]+$"
//		fields: {
//			bio?: string
//			[string]: string
//		}
//	}
//
// The zero-configuration policy only requires a non-empty username and
// string field values.
package policy
