package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHabitPatchLeavesNilFieldsUntouched(t *testing.T) {
	habit := Habit{Name: "Read", Unit: "pages", TargetValue: 10, IsActive: true}
	name := "Read more"
	inactive := false

	HabitPatch{Name: &name, IsActive: &inactive}.Apply(&habit)

	assert.Equal(t, "Read more", habit.Name)
	assert.False(t, habit.IsActive)
	assert.Equal(t, "pages", habit.Unit)
	assert.Equal(t, 10.0, habit.TargetValue)
}

func TestChallengePatchCopiesPointers(t *testing.T) {
	var challenge Challenge
	target := 5.0
	ChallengePatch{TargetValue: &target}.Apply(&challenge)

	target = 7
	if assert.NotNil(t, challenge.TargetValue) {
		assert.Equal(t, 5.0, *challenge.TargetValue)
	}
}

func TestUserPatchIgnoresPassword(t *testing.T) {
	user := User{Name: "Ana", PasswordHash: "hash"}
	password := "new-password"
	UserPatch{Password: &password}.Apply(&user)
	assert.Equal(t, "hash", user.PasswordHash)
	assert.Equal(t, "Ana", user.Name)
}

func TestParseCategory(t *testing.T) {
	for in, want := range map[string]Category{
		"social":       CategorySocial,
		" FISICA ":     CategoryFisica,
		"physical":     CategoryFisica,
		"Intellectual": CategoryIntelectual,
	} {
		got, err := ParseCategory(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseCategory("MUSICA")
	assert.Error(t, err)
}
