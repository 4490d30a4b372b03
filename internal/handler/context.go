package handler

type ContextKey string

var (
	RoleCtxKey     ContextKey = "role"
	SubCtxKey      ContextKey = "sub"
	MyInfoCtx      ContextKey = "myInfo"
	UserInfoCtx    ContextKey = "userInfo"
	AnimalCtx      ContextKey = "animal"
	ReservationCtx ContextKey = "reservation"
	ExaminationCtx ContextKey = "examination"
	MedicationCtx  ContextKey = "medication"
)
