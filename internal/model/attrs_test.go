package model

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestAttributeValueText(t *testing.T) {
    assert.Equal(t, "", AttributeValue{}.Text())
    assert.Equal(t, "Week 1", StringAttr("Week 1").Text())
    assert.Equal(t, "3", IntAttr(3).Text())
    assert.Equal(t, "1", BoolAttr(true).Text())
    assert.Equal(t, "0", BoolAttr(false).Text())
}

func TestAttributeValueCoercions(t *testing.T) {
    assert.Equal(t, int64(2), StringAttr("2").AsInt())
    assert.Equal(t, int64(0), StringAttr("two").AsInt())
    assert.Equal(t, int64(1), BoolAttr(true).AsInt())

    assert.True(t, StringAttr("yes").AsBool())
    assert.True(t, StringAttr("1").AsBool())
    assert.False(t, StringAttr("no").AsBool())
    assert.True(t, IntAttr(5).AsBool())
    assert.False(t, AttributeValue{}.AsBool())
}

func TestAttributeBagFirst(t *testing.T) {
    bag := AttributeBag{
        "standort": StringAttr("Stade de Varembé"),
    }
    // Missing keys are skipped until a present one is found, regardless of
    // which storefront language recorded it.
    v := bag.First("venue", "location", "standort")
    assert.Equal(t, "Stade de Varembé", v.Text())

    assert.True(t, bag.First("season", "saison").Missing())

    var nilBag AttributeBag
    assert.True(t, nilBag.Get("anything").Missing())
}

func TestAttendeeFullName(t *testing.T) {
    assert.Equal(t, "Anna Muster", AttendeeProfile{FirstName: "Anna", LastName: "Muster"}.FullName())
    assert.Equal(t, "Anna", AttendeeProfile{FirstName: "Anna"}.FullName())
    assert.Equal(t, "Muster", AttendeeProfile{LastName: "Muster"}.FullName())
}

func TestAttendeeAgeAt(t *testing.T) {
    a := AttendeeProfile{DateOfBirth: time.Date(2015, 7, 10, 0, 0, 0, 0, time.UTC)}

    // The day before and the day of the tenth birthday.
    assert.Equal(t, 9, a.AgeAt(time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC)))
    assert.Equal(t, 10, a.AgeAt(time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)))
    assert.Equal(t, 10, a.AgeAt(time.Date(2026, 7, 9, 0, 0, 0, 0, time.UTC)))
}
