package dto

type CreateRecordRequest struct {
	MealType string  `json:"meal_type" validate:"required,oneof=breakfast lunch dinner"`
	Price    float64 `json:"price" validate:"required,gte=0"`
	Location string  `json:"location" validate:"required"`
	// Date is epoch milliseconds; zero means now.
	Date int64 `json:"date"`
}

type CreateRecordResponse struct {
	RecordID string `json:"record_id"`
}
