package models

// All returns every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&LoginHistory{},
		&ChallengeTemplate{},
		&Reto{},
		&Criterion{},
		&DailyAssignment{},
		&DailyGeneration{},
		&Achievement{},
		&CriterionCompletion{},
		&Enrollment{},
		&Habit{},
		&Challenge{},
		&ProgressRecord{},
	}
}
