package repository

import (
    "database/sql"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"

    "github.com/activekidz/roster-resolution/internal/model"
)

func TestDecodeAttr(t *testing.T) {
    v := decodeAttr("string", "Week 1")
    assert.Equal(t, model.AttrString, v.Kind)
    assert.Equal(t, "Week 1", v.Text())

    v = decodeAttr("int", "3")
    assert.Equal(t, model.AttrInt, v.Kind)
    assert.Equal(t, int64(3), v.AsInt())

    v = decodeAttr("bool", "1")
    assert.Equal(t, model.AttrBool, v.Kind)
    assert.True(t, v.AsBool())

    // Unknown kinds degrade to text rather than dropping the value.
    v = decodeAttr("json", `{"a":1}`)
    assert.Equal(t, model.AttrString, v.Kind)
}

func TestNullableTimeHelpers(t *testing.T) {
    assert.Nil(t, nullableTime(nil))
    assert.Nil(t, nullableDate(time.Time{}))

    ts := time.Date(2025, 7, 7, 9, 30, 0, 0, time.FixedZone("CET", 3600))
    got := nullableTime(&ts)
    assert.Equal(t, ts.UTC(), got)
    assert.Equal(t, "2025-07-07", nullableDate(ts))

    assert.Nil(t, nullTimePtr(sql.NullTime{}))
    back := nullTimePtr(sql.NullTime{Valid: true, Time: ts})
    if assert.NotNil(t, back) {
        assert.Equal(t, ts.UTC(), *back)
    }
}
