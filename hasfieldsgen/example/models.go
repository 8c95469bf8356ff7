package example

import "io"

// @HasFields
type User struct {
	ID    uint32 // @Preflect(alias=uid)
	Name  string
	Email string `json:"email" preflect:"ignore"`
	Tags  []string
	Owner io.Closer
}

// @HasFields(naming=snake)
type Order struct {
	OrderID int64
	Amount  float64
	Buyer   *User // @Preflect(alias=[customer, "user"])
}
