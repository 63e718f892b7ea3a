// Package codec encodes values as typed JSON envelopes.
//
// An envelope names the Go type of its value by a qualified type name,
// "<TypeName>, <ModuleFullName>". Decoding resolves the module by its
// fully qualified identity through a Resolver, usually a resolve.Domain,
// so modules that were never loaded can only be decoded while a
// resolve.Handle for them is open.
package codec
