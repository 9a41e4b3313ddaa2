package codec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// FuzzDecode feeds arbitrary strings to the decoder. Anything it accepts must
// survive a second encode/decode pass unchanged.
func FuzzDecode(f *testing.F) {
	f.Add(`{"type":"Buffer","data":"AQID"}`)
	f.Add(`{"a":[1,2,{"type":"Buffer","data":[0,255]}],"b":null}`)
	f.Add(`{"buffer":true,"value":"AA=="}`)
	f.Add(`[]`)
	f.Add(``)
	f.Add(`{"type":"Buffer"}`)
	f.Add(`123456789012345678901234567890`)

	f.Fuzz(func(t *testing.T, in string) {
		v, err := Decode(in)
		if err != nil {
			return
		}
		encoded, err := Encode(v)
		if err != nil {
			// Decoded trees never contain marker-shaped maps, so a value the
			// decoder produced must always encode.
			t.Fatalf("re-encode of decoded value failed: %v", err)
		}
		again, err := Decode(encoded)
		if err != nil {
			t.Fatalf("decode of re-encoded value failed: %v", err)
		}
		if diff := cmp.Diff(v, again); diff != "" {
			t.Fatalf("unstable round trip (-first +second):\n%s", diff)
		}
	})
}
