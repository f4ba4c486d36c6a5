package services

import "widgetstore/internal/models"

// AggregateMetrics summarizes the given orders. Averages only count orders
// where the metric is set and are 0 when none are. Revenue covers every
// order passed in regardless of status.
func AggregateMetrics(orders []models.Order) models.OrderMetricsReport {
	report := models.OrderMetricsReport{TotalOrders: len(orders)}

	var (
		processingSum, processingCount int
		shipSum, shipCount             int
	)
	for _, order := range orders {
		report.TotalRevenue = report.TotalRevenue.Plus(order.TotalAmount)
		if order.ShippingDate != nil {
			report.TotalShippedOrders++
		}
		if order.Metrics == nil {
			continue
		}
		if m := order.Metrics.ProcessingTimeMinutes; m != nil {
			processingSum += *m
			processingCount++
		}
		if d := order.Metrics.OrderToShipDays; d != nil {
			shipSum += *d
			shipCount++
		}
	}

	if processingCount > 0 {
		report.AverageProcessingTimeMinutes = float64(processingSum) / float64(processingCount)
	}
	if shipCount > 0 {
		report.AverageOrderToShipDays = float64(shipSum) / float64(shipCount)
	}
	return report
}
