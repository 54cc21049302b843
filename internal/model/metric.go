package model

// TrackingCategory 对应一个打卡入口（fitness/water/sleep/meal/mood）
type TrackingCategory string

const (
	CategoryFitness TrackingCategory = "fitness"
	CategoryWater   TrackingCategory = "water"
	CategorySleep   TrackingCategory = "sleep"
	CategoryMeal    TrackingCategory = "meal"
	CategoryMood    TrackingCategory = "mood"
)

// TrackingCategories 固定的打卡分类
var TrackingCategories = []TrackingCategory{CategoryFitness, CategoryWater, CategorySleep, CategoryMeal, CategoryMood}

type MetricKind string

const (
	MetricSteps            MetricKind = "steps"
	MetricDistanceKm       MetricKind = "distance_km"
	MetricCaloriesBurned   MetricKind = "calories_burned"
	MetricActiveMinutes    MetricKind = "active_minutes"
	MetricWaterMl          MetricKind = "water_ml"
	MetricSleepHours       MetricKind = "sleep_hours"
	MetricCaloriesConsumed MetricKind = "calories_consumed"
	MetricMeals            MetricKind = "meals"
	MetricMoodScore        MetricKind = "mood_score"
)

type Aggregation string

const (
	AggSum   Aggregation = "SUM"
	AggMax   Aggregation = "MAX"
	AggCount Aggregation = "COUNT"
)

func (a Aggregation) Valid() bool {
	return a == AggSum || a == AggMax || a == AggCount
}

// MetricSpec 指标目录项
type MetricSpec struct {
	Kind        MetricKind       `json:"kind"`
	Category    TrackingCategory `json:"category"`
	Unit        string           `json:"unit"`
	Aggregation Aggregation      `json:"aggregation"`
}

// MetricCatalog 固定指标目录，顺序即展示顺序
var MetricCatalog = []MetricSpec{
	{Kind: MetricSteps, Category: CategoryFitness, Unit: "steps", Aggregation: AggSum},
	{Kind: MetricDistanceKm, Category: CategoryFitness, Unit: "km", Aggregation: AggSum},
	{Kind: MetricCaloriesBurned, Category: CategoryFitness, Unit: "kcal", Aggregation: AggSum},
	{Kind: MetricActiveMinutes, Category: CategoryFitness, Unit: "min", Aggregation: AggSum},
	{Kind: MetricWaterMl, Category: CategoryWater, Unit: "ml", Aggregation: AggSum},
	{Kind: MetricSleepHours, Category: CategorySleep, Unit: "h", Aggregation: AggSum},
	{Kind: MetricCaloriesConsumed, Category: CategoryMeal, Unit: "kcal", Aggregation: AggSum},
	{Kind: MetricMeals, Category: CategoryMeal, Unit: "meals", Aggregation: AggCount},
	{Kind: MetricMoodScore, Category: CategoryMood, Unit: "score", Aggregation: AggMax},
}

// LookupMetric 查找指标定义
func LookupMetric(kind MetricKind) (MetricSpec, bool) {
	for _, m := range MetricCatalog {
		if m.Kind == kind {
			return m, true
		}
	}
	return MetricSpec{}, false
}
