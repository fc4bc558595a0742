package models

import "time"

type Meal struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	MealType  string    `json:"meal_type"`
	Calories  float64   `json:"calories"`
	EatenAt   time.Time `json:"eaten_at"`
	CreatedAt time.Time `json:"created_at"`
}

type PhysicalActivity struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	ActivityType    string    `json:"activity_type"`
	DurationMinutes int       `json:"duration_minutes"`
	CaloriesBurned  float64   `json:"calories_burned"`
	PerformedAt     time.Time `json:"performed_at"`
	CreatedAt       time.Time `json:"created_at"`
}

type DailyCalories struct {
	Day      string  `json:"day"`
	Consumed float64 `json:"consumed"`
	Burned   float64 `json:"burned"`
	Net      float64 `json:"net"`
}
