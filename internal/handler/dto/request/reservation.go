package request

type CreateReservationCheckoutRequest struct {
	Date  string `json:"reservation_date" binding:"required"`
	Slot  string `json:"time_slot" binding:"required"`
	Cabin int    `json:"cabin_id" binding:"required,min=1"`
}
