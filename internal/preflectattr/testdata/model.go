package testdata

type User struct {
	ID    int64
	Name  string // @Preflect(alias=[n, "full_name"])
	Token string `preflect:"ignore"`
	// @Preflect(ignore=false)
	Age int
	// 仅说明，不是属性: @PreflectLike
	Note string // @Preflect
	_    int
}

type Broken struct {
	// @Preflect(ignore)
	Twice string `preflect:"alias=t"`
	Glued int    // @Preflect(ignore)x
	Bare  int    // @Preflect=ignore
	Open  int    // @Preflect(alias=[a, b)
	Both  int    // @Preflect(ignore, alias=b)
}

type Dup struct {
	UserID  int
	UserId  int // @Preflect(alias=uid)
	UID     int `preflect:"alias=uid"`
}
