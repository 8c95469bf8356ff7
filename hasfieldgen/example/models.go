package example

import "time"

// @HasField
type Account struct {
	ID        uint64 // @Preflect(alias=uid)
	Owner     string
	Balance   int64
	token     string `preflect:"ignore"`
	UpdatedAt time.Time
}

// Token 只能通过方法读取
func (a *Account) Token() string {
	return a.token
}
