package database

import (
	"wellness_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func metric(kind model.MetricKind) *model.MetricKind {
	return &kind
}

var defaultMissions = []model.MissionDefinition{
	{Code: "daily_steps_10k", Title: "10,000 steps", Description: "Walk 10,000 steps today", Category: "fitness", Unit: "steps", TargetValue: 10000, Points: 50, MetricKind: metric(model.MetricSteps), Aggregation: model.AggSum},
	{Code: "active_30", Title: "Move for 30 minutes", Description: "Log 30 active minutes", Category: "fitness", Unit: "min", TargetValue: 30, Points: 30, MetricKind: metric(model.MetricActiveMinutes), Aggregation: model.AggSum},
	{Code: "hydrate_2l", Title: "Drink 2 litres of water", Category: "water", Unit: "ml", TargetValue: 2000, Points: 20, MetricKind: metric(model.MetricWaterMl), Aggregation: model.AggSum},
	{Code: "sleep_8h", Title: "Sleep 8 hours", Category: "sleep", Unit: "h", TargetValue: 8, Points: 30, MetricKind: metric(model.MetricSleepHours), Aggregation: model.AggSum},
	{Code: "three_meals", Title: "Log three meals", Category: "meal", Unit: "meals", TargetValue: 3, Points: 15, MetricKind: metric(model.MetricMeals), Aggregation: model.AggCount},
	{Code: "good_mood", Title: "Feel good today", Description: "Reach a mood score of 8", Category: "mood", Unit: "score", TargetValue: 8, Points: 10, MetricKind: metric(model.MetricMoodScore), Aggregation: model.AggMax},
	{Code: "meditate_10", Title: "Meditate 10 minutes", Category: "mindfulness", Unit: "min", TargetValue: 10, Points: 20, Aggregation: model.AggSum},
	{Code: "read_20_pages", Title: "Read 20 pages", Category: "mindfulness", Unit: "pages", TargetValue: 20, Points: 15, Aggregation: model.AggSum},
}

var defaultActivities = []model.ActivityDefinition{
	{Code: "morning_stretch", Title: "Morning stretch", Category: "fitness", DurationMinutes: 10, Points: 10, Difficulty: "easy"},
	{Code: "box_breathing", Title: "Box breathing", Category: "mindfulness", DurationMinutes: 5, Points: 5, Difficulty: "easy"},
	{Code: "yoga_flow", Title: "Yoga flow", Category: "fitness", DurationMinutes: 20, Points: 20, Difficulty: "medium"},
	{Code: "brisk_walk", Title: "Brisk walk", Category: "fitness", DurationMinutes: 30, Points: 25, Difficulty: "medium"},
	{Code: "gratitude_journal", Title: "Gratitude journal", Category: "mindfulness", DurationMinutes: 10, Points: 10, Difficulty: "easy"},
	{Code: "hiit_session", Title: "HIIT session", Category: "fitness", DurationMinutes: 25, Points: 40, Difficulty: "hard"},
}

// SeedCatalogs 按 code 幂等写入默认任务与活动目录
func SeedCatalogs(db *gorm.DB) error {
	for i := range defaultMissions {
		m := defaultMissions[i]
		m.IsEnabled = true
		if err := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).Create(&m).Error; err != nil {
			return err
		}
	}

	for i := range defaultActivities {
		a := defaultActivities[i]
		a.IsEnabled = true
		if err := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).Create(&a).Error; err != nil {
			return err
		}
	}

	return nil
}
