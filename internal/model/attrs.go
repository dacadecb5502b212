package model

import "strconv"

// AttrKind enumerates the payload carried by an AttributeValue.  Purchase
// attributes arrive from the order store as loosely typed key/value pairs;
// wrapping them in a tagged union lets normalizers distinguish between a
// missing field and an empty string instead of silently treating both the
// same way.
type AttrKind int

const (
    AttrMissing AttrKind = iota // no value recorded for the key
    AttrString                  // free text or taxonomy term name
    AttrInt                     // numeric attribute (quantities, IDs)
    AttrBool                    // flag attribute (girls-only, full-day)
)

// AttributeValue is a tagged-union attribute payload.  Exactly one of the
// payload fields is meaningful, selected by Kind.
type AttributeValue struct {
    Kind AttrKind
    Str  string
    Int  int64
    Bool bool
}

// StringAttr wraps a text value.
func StringAttr(s string) AttributeValue { return AttributeValue{Kind: AttrString, Str: s} }

// IntAttr wraps a numeric value.
func IntAttr(n int64) AttributeValue { return AttributeValue{Kind: AttrInt, Int: n} }

// BoolAttr wraps a flag value.
func BoolAttr(b bool) AttributeValue { return AttributeValue{Kind: AttrBool, Bool: b} }

// Missing reports whether no value was recorded.
func (v AttributeValue) Missing() bool { return v.Kind == AttrMissing }

// Text renders the value as a string regardless of kind.  Missing values
// render as the empty string; flags render as "0"/"1".
func (v AttributeValue) Text() string {
    switch v.Kind {
    case AttrString:
        return v.Str
    case AttrInt:
        return strconv.FormatInt(v.Int, 10)
    case AttrBool:
        if v.Bool {
            return "1"
        }
        return "0"
    default:
        return ""
    }
}

// AsInt coerces the value to an integer, defaulting to 0 when the value is
// missing or not numeric.
func (v AttributeValue) AsInt() int64 {
    switch v.Kind {
    case AttrInt:
        return v.Int
    case AttrString:
        n, err := strconv.ParseInt(v.Str, 10, 64)
        if err != nil {
            return 0
        }
        return n
    case AttrBool:
        if v.Bool {
            return 1
        }
        return 0
    default:
        return 0
    }
}

// AsBool coerces the value to a flag.  String values "1", "true" and "yes"
// count as set; everything else is false.
func (v AttributeValue) AsBool() bool {
    switch v.Kind {
    case AttrBool:
        return v.Bool
    case AttrInt:
        return v.Int != 0
    case AttrString:
        switch v.Str {
        case "1", "true", "TRUE", "yes", "YES":
            return true
        }
        return false
    default:
        return false
    }
}

// AttributeBag is the attribute set attached to an order item, catalog
// entry or variant.  Keys are attribute names as recorded at purchase time.
type AttributeBag map[string]AttributeValue

// Get returns the value for key, or a missing value when absent.
func (b AttributeBag) Get(key string) AttributeValue {
    if b == nil {
        return AttributeValue{}
    }
    if v, ok := b[key]; ok {
        return v
    }
    return AttributeValue{}
}

// First returns the first present value among the given keys.  Attribute
// keys vary by storefront language, so callers pass every known variant.
func (b AttributeBag) First(keys ...string) AttributeValue {
    for _, k := range keys {
        if v := b.Get(k); !v.Missing() {
            return v
        }
    }
    return AttributeValue{}
}
