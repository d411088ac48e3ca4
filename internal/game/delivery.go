package game

// DeliveryOrder is a deferred fulfillment created by an online purchase.
type DeliveryOrder struct {
	Product    Product `json:"product"`
	Quantity   int     `json:"quantity"`
	ArrivalDay int     `json:"arrival_day"`
}

// DeliveryQueue holds outstanding orders. Every purchase creates its own
// entry; entries are never merged.
type DeliveryQueue struct {
	orders []DeliveryOrder
}

func (q *DeliveryQueue) Enqueue(p Product, quantity, arrivalDay int) {
	q.orders = append(q.orders, DeliveryOrder{Product: p, Quantity: quantity, ArrivalDay: arrivalDay})
}

// Collect removes every order due on or before day and returns them in
// enqueue order. Later orders stay untouched.
func (q *DeliveryQueue) Collect(day int) []DeliveryOrder {
	var arrived []DeliveryOrder
	remaining := q.orders[:0]
	for _, o := range q.orders {
		if o.ArrivalDay <= day {
			arrived = append(arrived, o)
			continue
		}
		remaining = append(remaining, o)
	}
	q.orders = remaining
	return arrived
}

// Pending returns a copy of the outstanding orders.
func (q *DeliveryQueue) Pending() []DeliveryOrder {
	out := make([]DeliveryOrder, len(q.orders))
	copy(out, q.orders)
	return out
}

func (q *DeliveryQueue) Len() int { return len(q.orders) }
