// Package codec serializes auth-state values to the string form stored in
// Redis and back, without losing binary payloads.
//
// Values are JSON. Byte slices anywhere in the tree are written as the
// reserved marker object
//
//	{"type":"Buffer","data":"<base64>"}
//
// which is the format produced by existing deployments. [Decode] turns every
// marker back into a []byte, so Decode(Encode(v)) reproduces v exactly for
// values built from nil, bool, string, [json.Number], []byte, map[string]any
// and []any. Numbers always decode as [json.Number] to keep 64-bit integers
// intact.
//
// Any object tagged "type":"Buffer" or "buffer":true is a marker. The payload
// is read from "data", falling back to "value", and may be base64 text or an
// array of byte values; a missing or null payload decodes as empty bytes.
// Encoding an ordinary map or struct of that shape fails with
// [ErrReservedShape].
//
// Typed values are walked before encoding: structs become maps keyed by their
// json field names (honoring "-" and omitempty, with exported embedded
// structs promoted), so []byte fields anywhere in them get the marker too.
// Nil pointers, maps and non-byte slices encode as [Null]. Decoding such a
// value yields the generic form; [Unmarshal] into a struct needs [Buffer] for
// its binary fields, since [Buffer] implements json.Marshaler and
// json.Unmarshaler with the same marker.
package codec
