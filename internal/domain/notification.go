package domain

import "time"

type Notification struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"orderId"`
	OrderNumber int64     `json:"orderNumber"`
	WaiterName  string    `json:"waiterName"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"createdAt"`
	Read        bool      `json:"read"`
}
