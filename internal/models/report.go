package models

type OrderMetricsReport struct {
	AverageProcessingTimeMinutes float64 `json:"averageProcessingTimeMinutes"`
	AverageOrderToShipDays       float64 `json:"averageOrderToShipDays"`
	TotalOrders                  int     `json:"totalOrders"`
	TotalShippedOrders           int     `json:"totalShippedOrders"`
	TotalRevenue                 Money   `json:"totalRevenue"`
}
