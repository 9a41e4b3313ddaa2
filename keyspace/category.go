package keyspace

import "fmt"

// Category identifies one kind of key material. The set is closed.
type Category uint8

const (
	PreKey Category = iota
	Session
	SenderKey
	SenderKeyMemory
	AppStateSyncKey
	AppStateSyncVersion
	LIDMapping
	DeviceList
	TCToken
	categoryCount
)

var categoryNames = [categoryCount]string{
	PreKey:              "pre-key",
	Session:             "session",
	SenderKey:           "sender-key",
	SenderKeyMemory:     "sender-key-memory",
	AppStateSyncKey:     "app-state-sync-key",
	AppStateSyncVersion: "app-state-sync-version",
	LIDMapping:          "lid-mapping",
	DeviceList:          "device-list",
	TCToken:             "tctoken",
}

// Categories returns every category in key-layout order.
func Categories() []Category {
	out := make([]Category, 0, categoryCount)
	for c := Category(0); c < categoryCount; c++ {
		out = append(out, c)
	}
	return out
}

// NumCategories is the size of the closed category set.
const NumCategories = int(categoryCount)

// String returns the wire name used as the bucket key suffix.
func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("category(%d)", uint8(c))
	}
	return categoryNames[c]
}

// Valid reports whether c is a member of the closed set.
func (c Category) Valid() bool {
	return c < categoryCount
}

// ParseCategory maps a wire name back to its Category.
func ParseCategory(name string) (Category, error) {
	for c := Category(0); c < categoryCount; c++ {
		if categoryNames[c] == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown key category %q", name)
}

// MarshalText implements encoding.TextMarshaler so categories can be used as
// JSON map keys.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid key category %d", uint8(c))
	}
	return []byte(categoryNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
